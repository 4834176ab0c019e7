package validator

// Errors maps a field key to its message.
type Errors map[string]string

// firstOrder lists fields from most to least actionable for a submitter.
var firstOrder = []string{
	FieldTime,
	FieldDateTime,
	FieldDate,
	FieldService,
	FieldEmail,
	FieldPhone,
	FieldName,
	FieldID,
}

func (e Errors) Has(field string) bool {
	_, ok := e[field]
	return ok
}

// First returns the message to surface when only one can be shown.
func (e Errors) First() string {
	for _, field := range firstOrder {
		if msg, ok := e[field]; ok {
			return msg
		}
	}
	return ""
}

// Fields lists the failing field keys in First order.
func (e Errors) Fields() []string {
	out := make([]string, 0, len(e))
	for _, field := range firstOrder {
		if e.Has(field) {
			out = append(out, field)
		}
	}
	return out
}
