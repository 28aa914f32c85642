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

package lang

import "fmt"

// Diagnostic reports a problem found while translating source text. Unlike
// a hard parse failure, a Diagnostic doesn't necessarily abort translation:
// the *Program returned by Translate may still be usable if every Diagnostic is a
// placement/compatibility warning rather than a syntax error.
type Diagnostic struct {
	Line, Col int
	Msg       string
	Fatal     bool
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s", d.Line, d.Col, d.Msg)
}
