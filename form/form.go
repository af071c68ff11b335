// Package form builds prefilled links to the moderation log form.
package form

import (
	"net/url"
	"strings"

	"github.com/CasualConversation/casualbotler/modaction"
)

// Field names a form input.
type Field string

const (
	FieldNick     Field = "nick"
	FieldResult   Field = "result"
	FieldLength   Field = "length"
	FieldOperator Field = "operator"
	FieldChannel  Field = "channel"
	FieldReason   Field = "reason"
	FieldHost     Field = "host"
)

// EntryIDs maps each field to the form's entry id.
var EntryIDs = map[Field]string{
	FieldNick:     "1999262323",
	FieldResult:   "1898835520",
	FieldLength:   "1118037499",
	FieldOperator: "1103903875",
	FieldChannel:  "729017272",
	FieldReason:   "956001950",
	FieldHost:     "400563484",
}

// order fixes the parameter order so links are stable.
var order = []Field{FieldNick, FieldResult, FieldLength, FieldOperator, FieldChannel, FieldReason, FieldHost}

// Fields returns the form fields in link order.
func Fields() []Field { return append([]Field(nil), order...) }

// Values returns the record's fields by form field. Absent fields are omitted.
func Values(rec modaction.Record) map[Field]string {
	all := map[Field]string{
		FieldNick:     rec.Nick,
		FieldResult:   string(rec.Result),
		FieldLength:   rec.Length,
		FieldOperator: rec.Operator,
		FieldChannel:  rec.Channel,
		FieldReason:   rec.Reason,
		FieldHost:     rec.Host,
	}
	for k, v := range all {
		if v == "" {
			delete(all, k)
		}
	}
	return all
}

// Build appends "&entry.<id>=<value>" to baseURL for each present field of
// rec. baseURL is expected to already carry a query string, as the form's
// "viewform?usp=pp_url" link does.
func Build(baseURL string, rec modaction.Record) string {
	vals := Values(rec)
	var b strings.Builder
	b.WriteString(baseURL)
	for _, f := range order {
		v, ok := vals[f]
		if !ok {
			continue
		}
		b.WriteString("&entry.")
		b.WriteString(EntryIDs[f])
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(v))
	}
	return b.String()
}
