// Package hypergeom computes exact hypergeometric probabilities for drawing
// cards without replacement.
//
// All functions take a population of N cards holding K successes, from which n
// cards are observed. Arguments outside 0 <= K <= N, 0 <= n <= N, or a kMin
// above n are rejected with ErrInvalidDomain rather than silently returning 0.
package hypergeom

import (
	"errors"
	"fmt"
	"math/big"
)

// ErrInvalidDomain is returned for arguments outside the distribution's support.
var ErrInvalidDomain = errors.New("hypergeom: invalid domain")

func validate(N, K, n int) error {
	switch {
	case N < 0 || K < 0 || n < 0:
		return fmt.Errorf("%w: negative argument (N=%d, K=%d, n=%d)", ErrInvalidDomain, N, K, n)
	case K > N:
		return fmt.Errorf("%w: K=%d exceeds N=%d", ErrInvalidDomain, K, N)
	case n > N:
		return fmt.Errorf("%w: n=%d exceeds N=%d", ErrInvalidDomain, n, N)
	}
	return nil
}

// Binomial returns C(n, k) exactly. It is zero when k < 0 or k > n.
func Binomial(n, k int) *big.Int {
	if k < 0 || n < 0 || k > n {
		return new(big.Int)
	}
	return new(big.Int).Binomial(int64(n), int64(k))
}

// Exactly returns P(X = k).
func Exactly(k, N, K, n int) (float64, error) {
	if err := validate(N, K, n); err != nil {
		return 0, err
	}
	if k < 0 || k > n {
		return 0, fmt.Errorf("%w: k=%d outside [0, %d]", ErrInvalidDomain, k, n)
	}
	num := new(big.Int).Mul(Binomial(K, k), Binomial(N-K, n-k))
	return ratio(num, Binomial(N, n)), nil
}

// AtLeast returns P(X >= kMin). AtLeast(0, ...) is exactly 1.
func AtLeast(kMin, N, K, n int) (float64, error) {
	if err := validate(N, K, n); err != nil {
		return 0, err
	}
	if kMin < 0 || kMin > n {
		return 0, fmt.Errorf("%w: kMin=%d outside [0, %d]", ErrInvalidDomain, kMin, n)
	}
	if kMin == 0 {
		return 1, nil
	}

	top := min(K, n)
	sum := new(big.Int)
	term := new(big.Int)
	for k := kMin; k <= top; k++ {
		term.Mul(Binomial(K, k), Binomial(N-K, n-k))
		sum.Add(sum, term)
	}
	return ratio(sum, Binomial(N, n)), nil
}

// AtLeastOne returns P(X >= 1) = 1 - C(N-K, n)/C(N, n). It rejects the same
// arguments as AtLeast(1, N, K, n), including n == 0.
func AtLeastOne(N, K, n int) (float64, error) {
	if err := validate(N, K, n); err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: kMin=1 outside [0, %d]", ErrInvalidDomain, n)
	}
	total := Binomial(N, n)
	misses := Binomial(N-K, n)
	return ratio(new(big.Int).Sub(total, misses), total), nil
}

// ratio converts num/den to float64 through an exact rational.
func ratio(num, den *big.Int) float64 {
	if den.Sign() == 0 {
		return 0
	}
	f, _ := new(big.Rat).SetFrac(num, den).Float64()
	return f
}
