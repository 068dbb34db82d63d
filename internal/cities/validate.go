package cities

import (
	"fmt"
	"strings"
)

// Validation is the outcome of checking a user-entered city against the table.
type Validation struct {
	Valid            bool
	City             string
	ExpectedProvince string
	Reason           string
}

// Validate checks that city is a known municipality and, when province is
// given and the table knows the city's province, that they match.
func (t *Table) Validate(city, province string) Validation {
	ref, ok := t.Lookup(city)
	if !ok {
		return Validation{
			City:   Normalize(city),
			Reason: fmt.Sprintf("'%s' is not a recognized Belgian city. Please check the spelling.", strings.TrimSpace(city)),
		}
	}

	province = strings.TrimSpace(province)
	if ref.Province != "" && province != "" && ref.Province != province {
		return Validation{
			City:             ref.Name,
			ExpectedProvince: ref.Province,
			Reason:           fmt.Sprintf("'%s' is not in %s. This city is located in %s.", Title(ref.Name), province, ref.Province),
		}
	}

	return Validation{Valid: true, City: ref.Name}
}
