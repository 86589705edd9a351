/*Package sqlbuild assembles the dynamic fragments of the parameterized
queries used by the models: SET clauses for partial updates, WHERE clauses
for optional list filters, and the key allowlist guard that keeps unexpected
input keys away from any SQL assembly.
*/
package sqlbuild

import (
	"fmt"
	"sort"
	"strings"

	"github.com/relabs-tech/jobly/core/errs"
)

// Field is one column assignment for a partial update.
type Field struct {
	Name  string
	Value interface{}
}

// Fields is an ordered list of column assignments. Order is preserved all
// the way into the generated SET clause and its value list.
type Fields []Field

// FieldsFromMap selects the given keys from data, in the order the keys are
// passed, keeping only those present in data. A key present with a nil value
// is kept and later renders as SQL NULL.
func FieldsFromMap(data map[string]interface{}, keys ...string) Fields {
	var fields Fields
	for _, key := range keys {
		if value, ok := data[key]; ok {
			fields = append(fields, Field{Name: key, Value: value})
		}
	}
	return fields
}

// ForPartialUpdate generates the SET fragment of an UPDATE statement plus the
// positionally aligned list of values.
//
// colNames maps field names to database column names; fields without a
// mapping use their name verbatim. Values pass through untouched.
//
// Example: {firstName: "Aliya"}, {age: 32} => `"first_name"=$1, "age"=$2`
func ForPartialUpdate(data Fields, colNames map[string]string) (string, []interface{}, error) {
	if len(data) == 0 {
		return "", nil, errs.New(errs.KindInvalidInput, "no data")
	}

	cols := make([]string, len(data))
	values := make([]interface{}, len(data))
	for i, field := range data {
		col := field.Name
		if mapped, ok := colNames[field.Name]; ok {
			col = mapped
		}
		cols[i] = fmt.Sprintf(`"%s"=$%d`, col, i+1)
		values[i] = field.Value
	}
	return strings.Join(cols, ", "), values, nil
}

// WhereClause combines the passed predicate strings into a single WHERE
// clause, joined by AND in the order given. Each predicate must already
// carry its own positional parameter placeholders. No predicates means no
// clause at all, the empty string is returned.
func WhereClause(predicates ...string) string {
	if len(predicates) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(predicates, " AND ")
}

// CheckAllowedKeys fails with an invalid-input error naming the first key
// that is not in the allowed set. Models call this on filter options and
// update payloads before the keys get anywhere near a query.
func CheckAllowedKeys(keys []string, allowed ...string) error {
	for _, key := range keys {
		ok := false
		for _, a := range allowed {
			if key == a {
				ok = true
				break
			}
		}
		if !ok {
			return errs.New(errs.KindInvalidInput, "key %q not allowed", key)
		}
	}
	return nil
}

// MapKeys returns the keys of m in stable order.
func MapKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
