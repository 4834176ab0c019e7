package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRawInput_GetText(t *testing.T) {
	in := RawInput{
		"string": "hello",
		"null":   nil,
		"false":  false,
		"true":   true,
		"zero":   float64(0),
		"float":  123.5,
		"large":  5551234567.0,
		"int":    42,
		"number": json.Number("7"),
		"exp":    json.Number("1e3"),
		"frac":   json.Number("2.50"),
		"nzero":  json.Number("0.0"),
		"array":  []interface{}{"a", 1.0, false},
		"nums":   []interface{}{json.Number("0"), json.Number("1e2")},
		"object": map[string]interface{}{"k": "v"},
	}

	t.Run("NilInput", func(t *testing.T) {
		var nilInput RawInput
		assert.Equal(t, "", nilInput.GetText("any"))
	})

	tests := []struct {
		key  string
		want string
	}{
		{"string", "hello"},
		{"missing", ""},
		{"null", ""},
		{"false", ""},
		{"true", "true"},
		{"zero", ""},
		{"float", "123.5"},
		{"large", "5551234567"},
		{"int", "42"},
		{"number", "7"},
		{"exp", "1000"},
		{"frac", "2.5"},
		{"nzero", ""},
		{"array", "a,1,false"},
		{"nums", "0,100"},
		{"object", "[object Object]"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, in.GetText(tt.key))
		})
	}
}

func TestBookingFromInput(t *testing.T) {
	b := BookingFromInput(RawInput{
		"id":    float64(7),
		"name":  " Old ",
		"phone": 5551234567.0,
		"date":  "2099-01-01",
		"time":  "10:00",
		"notes": nil,
	})

	assert.Equal(t, "7", b.ID)
	assert.Equal(t, " Old ", b.Name)
	assert.Equal(t, "5551234567", b.Phone)
	assert.Equal(t, "2099-01-01T10:00", b.SortKey())
	assert.Empty(t, b.Notes)
	assert.Empty(t, BookingFromInput(nil).ID)
}

func TestBooking_SortKey(t *testing.T) {
	b := Booking{Date: "2099-01-02", Time: "09:30"}
	assert.Equal(t, "2099-01-02T09:30", b.SortKey())
}

func TestBooking_Matches(t *testing.T) {
	b := Booking{Name: "Ada Lovelace", Service: "Premium Planning", Email: "ada@example.com", Phone: "+44 1234 5678"}

	assert.True(t, b.Matches(""))
	assert.True(t, b.Matches("  lovelace "))
	assert.True(t, b.Matches("PREMIUM"))
	assert.True(t, b.Matches("example.com"))
	assert.True(t, b.Matches("1234"))
	assert.False(t, b.Matches("consultation"))
}

func TestIsService(t *testing.T) {
	for _, s := range Services {
		assert.True(t, IsService(s))
	}
	assert.False(t, IsService("consultation"))
	assert.False(t, IsService("Nope"))
}

func TestPatterns(t *testing.T) {
	assert.True(t, PhonePattern.MatchString("+1 (555) 123-4567"))
	assert.False(t, PhonePattern.MatchString("123"))
	assert.False(t, PhonePattern.MatchString("555-CALL-NOW"))
	assert.True(t, DatePattern.MatchString("2099-01-01"))
	assert.False(t, DatePattern.MatchString("2099-1-1"))
	assert.True(t, TimePattern.MatchString("09:00"))
	assert.False(t, TimePattern.MatchString("9:00"))
}
