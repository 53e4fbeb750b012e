package bulkimport

import "strings"

// fieldSpec maps the accepted header spellings of one canonical field. Aliases
// are tried in order, so "name" beats "fullname" when a sheet carries both.
type fieldSpec struct {
	canonical string
	aliases   []string
}

var studentFields = []fieldSpec{
	{"name", []string{"name", "fullname"}},
	{"email", []string{"email"}},
	{"registerNo", []string{"registerno", "regno", "registerid"}},
	{"department", []string{"department", "dept"}},
	{"year", []string{"year"}},
	{"password", []string{"password"}},
}

var proctorFields = []fieldSpec{
	{"name", []string{"name", "fullname"}},
	{"email", []string{"email"}},
	{"department", []string{"department", "dept"}},
	{"password", []string{"password"}},
}

// normalizeKey lowercases a header and strips all whitespace, so
// "Register No" and "registerno" resolve to the same alias.
func normalizeKey(key string) string {
	return strings.ToLower(strings.Join(strings.Fields(key), ""))
}

// resolve maps raw row values onto canonical field names using the alias table.
// Unknown headers are ignored; values are whitespace-trimmed.
func resolve(raw map[string]string, fields []fieldSpec) map[string]string {
	byAlias := make(map[string]string, len(raw))
	for k, v := range raw {
		byAlias[normalizeKey(k)] = strings.TrimSpace(v)
	}
	out := make(map[string]string, len(fields))
	for _, f := range fields {
		for _, alias := range f.aliases {
			if v := byAlias[alias]; v != "" {
				out[f.canonical] = v
				break
			}
		}
	}
	return out
}
