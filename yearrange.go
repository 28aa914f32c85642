/*
This file is part of hfcsim.

hfcsim is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

hfcsim is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with hfcsim.  If not, see <http://www.gnu.org/licenses/>.
*/

package hfcsim

import "math"

// Sentinels used in place of a concrete bound to mean "negative infinity"
// and "positive infinity" respectively. They correspond to the grammar's
// "beginning" and "onwards" keywords.
const (
	YearBeginning = math.MinInt32
	YearOnwards   = math.MaxInt32
)

// YearRange is an inclusive [Start, End] range of simulation years. Either
// bound may be one of the sentinels above.
type YearRange struct {
	Start, End int
}

// AllYears is the unrestricted range, equivalent to omitting a "during"
// clause entirely.
var AllYears = YearRange{Start: YearBeginning, End: YearOnwards}

// NewYearRange constructs a YearRange, swapping the bounds into ascending
// order unless either bound is a sentinel (a sentinel is already maximally
// extreme, so swapping it would be meaningless).
func NewYearRange(a, b int) YearRange {
	if a == YearBeginning || a == YearOnwards || b == YearBeginning || b == YearOnwards {
		return YearRange{Start: a, End: b}
	}
	if a > b {
		a, b = b, a
	}
	return YearRange{Start: a, End: b}
}

// Contains reports whether year falls within the range, inclusive.
func (r YearRange) Contains(year int) bool {
	return year >= r.Start && year <= r.End
}

// Equal reports whether two year ranges have identical bounds.
func (r YearRange) Equal(o YearRange) bool {
	return r.Start == o.Start && r.End == o.End
}
