package entity

import (
	"reflect"
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
	lru "github.com/hashicorp/golang-lru/v2"
)

// TableNamer lets a type choose its own table name.
type TableNamer interface {
	TableName() string
}

var (
	pluralizeClient = pluralizer.NewClient()
	tableNames, _   = lru.New[reflect.Type, string](512)
)

// TableName returns the table an entity is stored in: TableNamer when
// implemented, otherwise the type name in snake case with its last word
// pluralised, so UserAccount becomes user_accounts.
func TableName(v any) string {
	if n, ok := v.(TableNamer); ok {
		return n.TableName()
	}
	t := reflect.TypeOf(v)
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name, ok := tableNames.Get(t); ok {
		return name
	}
	name := pluralTable(t.Name())
	tableNames.Add(t, name)
	return name
}

func pluralTable(typeName string) string {
	words := strings.Split(snakeCase(typeName), "_")
	last := len(words) - 1
	words[last] = pluralizeClient.Plural(words[last])
	return strings.Join(words, "_")
}

// snakeCase splits on case changes, keeping acronyms together:
// HTTPServer is http_server, UserID is user_id.
func snakeCase(name string) string {
	runes := []rune(name)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
