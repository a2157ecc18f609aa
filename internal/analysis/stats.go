package analysis

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Pearson returns the correlation coefficient of x and y and its two-sided
// p-value under the null hypothesis of no correlation.
func Pearson(x, y []float64) (r, p float64, err error) {
	n := len(x)
	if n != len(y) {
		return 0, 0, fmt.Errorf("length mismatch: %d vs %d", n, len(y))
	}
	if n < 3 {
		return 0, 0, fmt.Errorf("need at least 3 observations, got %d", n)
	}

	r = stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return r, math.NaN(), nil
	}
	if math.Abs(r) >= 1 {
		return math.Copysign(1, r), 0, nil
	}

	df := float64(n - 2)
	t := r * math.Sqrt(df/(1-r*r))
	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p = 2 * dist.Survival(math.Abs(t))
	return r, p, nil
}

// Regression is an ordinary least squares fit of passengers on the
// standardized weather variables.
type Regression struct {
	Variables    []string
	Coefficients []float64
	Intercept    float64
	R2           float64
	AdjustedR2   float64
	RMSE         float64
	Actual       []float64
	Predicted    []float64
}

// Residuals returns actual minus predicted.
func (r Regression) Residuals() []float64 {
	out := make([]float64, len(r.Actual))
	floats.SubTo(out, r.Actual, r.Predicted)
	return out
}

// Fit regresses y on the given columns after scaling each to zero mean and
// unit population variance, so coefficients compare effect sizes.
func Fit(names []string, columns [][]float64, y []float64) (Regression, error) {
	n, k := len(y), len(columns)
	if n <= k+1 {
		return Regression{}, fmt.Errorf("need more than %d observations for %d variables, got %d", k+1, k, n)
	}

	design := mat.NewDense(n, k+1, nil)
	for i := 0; i < n; i++ {
		design.Set(i, 0, 1)
	}
	for j, col := range columns {
		if len(col) != n {
			return Regression{}, fmt.Errorf("variable %s has %d values, want %d", names[j], len(col), n)
		}
		mean, std := stat.PopMeanStdDev(col, nil)
		if std == 0 {
			return Regression{}, fmt.Errorf("variable %s is constant", names[j])
		}
		for i, v := range col {
			design.Set(i, j+1, (v-mean)/std)
		}
	}

	var beta mat.VecDense
	if err := beta.SolveVec(design, mat.NewVecDense(n, append([]float64(nil), y...))); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return Regression{}, fmt.Errorf("least squares: %w", err)
		}
	}

	var fitted mat.VecDense
	fitted.MulVec(design, &beta)
	predicted := make([]float64, n)
	for i := range predicted {
		predicted[i] = fitted.AtVec(i)
	}

	reg := Regression{
		Variables:    append([]string(nil), names...),
		Coefficients: make([]float64, k),
		Intercept:    beta.AtVec(0),
		Actual:       append([]float64(nil), y...),
		Predicted:    predicted,
	}
	for j := 0; j < k; j++ {
		reg.Coefficients[j] = beta.AtVec(j + 1)
	}

	reg.R2 = stat.RSquaredFrom(predicted, y, nil)
	reg.AdjustedR2 = 1 - (1-reg.R2)*float64(n-1)/float64(n-k-1)
	residuals := reg.Residuals()
	reg.RMSE = math.Sqrt(floats.Dot(residuals, residuals) / float64(n))
	return reg, nil
}

// LineFit returns the intercept and slope of the least squares line y = a + b*x.
func LineFit(x, y []float64) (a, b float64) {
	return stat.LinearRegression(x, y, nil, false)
}
