package fsrs

import (
	"fmt"
	"math"
)

// NumParameters is the length of the model weight vector.
const NumParameters = 17

// Parameters are the static model weights.
//
//	w[0..3]   initial stability anchors
//	w[4]      initial difficulty at quality 3
//	w[5..7]   recall factors for quality 5, 4 and 3
//	w[8]      multiplicative stability decay on a lapse
//	w[10]     initial difficulty slope per quality step
//	w[11..14] lapse stability curve
//	w[12]     difficulty update rate
//	w[15]     recall growth exponent
type Parameters [NumParameters]float64

var DefaultParameters = Parameters{
	0.4, 0.6, 2.4, 5.8,
	4.93, 0.94, 0.86, 0.01,
	1.49, 0.14, 0.94, 2.18,
	0.05, 0.34, 1.26, 0.29,
	2.61,
}

// Validate rejects weights that would make stability non-positive or undefined.
func (p Parameters) Validate() error {
	for i, w := range p {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: w[%d] = %v", ErrInvalidParameters, i, w)
		}
	}
	for _, i := range []int{0, 2, 3, 5, 6, 7, 8, 11, 13} {
		if p[i] <= 0 {
			return fmt.Errorf("%w: w[%d] = %v must be positive", ErrInvalidParameters, i, p[i])
		}
	}
	if p[3] < p[2] {
		return fmt.Errorf("%w: w[3] = %v must not be below w[2] = %v", ErrInvalidParameters, p[3], p[2])
	}
	return nil
}
