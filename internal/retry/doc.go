// Package retry retries connection establishment with exponential backoff.
//
// Only opening the store connection is retried. Statements inside a load
// transaction are never retried: a failed insert rolls the whole table back.
//
// # Example Usage
//
//	executor := retry.NewExecutor(
//	    retry.NewPostgreSQLErrorClassifier(),
//	    retry.NewExponentialBackoff(3),
//	)
//
//	err := executor.Execute(ctx, func(ctx context.Context) error {
//	    return pool.Ping(ctx)
//	})
//
// # Error Classification
//
// A Classifier decides which errors are transient. PostgreSQLErrorClassifier
// treats connection exceptions (class 08), insufficient resources (53),
// operator intervention (57) and refused or reset network connections as
// transient; authentication and configuration errors are fatal.
//
// # Time
//
// Waiting goes through a clockwork.Clock so tests can advance time without
// sleeping.
package retry
