package cli

import "os"

// lookupEnv is replaced in tests to isolate them from the host environment.
var lookupEnv = os.Getenv
