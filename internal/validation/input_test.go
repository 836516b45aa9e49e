package validation

import (
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"valid uuid", "6f1c2b8e-3d4a-4e5f-8a9b-0c1d2e3f4a5b", false},
		{"uppercase uuid", "6F1C2B8E-3D4A-4E5F-8A9B-0C1D2E3F4A5B", false},
		{"empty", "", true},
		{"numeric", "123", true},
		{"sql", "1; DROP TABLE profiles", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID("id", tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

type sample struct {
	Title    *string  `json:"title" validate:"omitempty,max=10"`
	Status   string   `json:"status" validate:"omitempty,oneof=draft published"`
	Email    *string  `json:"admin_email" validate:"omitempty,admin_email"`
	TimeZone *string  `json:"time_zone" validate:"omitempty,timezone"`
	Temp     *float64 `json:"bot_temperature" validate:"omitempty,gte=0,lte=2"`
	Page     int      `json:"page" validate:"required"`
}

func ptr[T any](v T) *T { return &v }

func TestStruct(t *testing.T) {
	tests := []struct {
		name      string
		in        sample
		wantField string // empty means valid
	}{
		{"valid minimal", sample{Page: 1}, ""},
		{"valid full", sample{Title: ptr("Hello"), Status: "draft", Email: ptr("a@b.co"), TimeZone: ptr("Asia/Karachi"), Temp: ptr(0.7), Page: 1}, ""},
		{"title too long", sample{Title: ptr(strings.Repeat("x", 11)), Page: 1}, "title"},
		{"bad status", sample{Status: "archived", Page: 1}, "status"},
		{"bad email", sample{Email: ptr("not-an-email"), Page: 1}, "admin_email"},
		{"bad zone", sample{TimeZone: ptr("Mars/Olympus"), Page: 1}, "time_zone"},
		{"temperature too high", sample{Temp: ptr(3.5), Page: 1}, "bot_temperature"},
		{"missing page", sample{}, "page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Struct() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Struct() = nil, want error mentioning %q", tt.wantField)
			}
			if !strings.HasPrefix(err.Error(), tt.wantField+" ") {
				t.Errorf("Struct() error = %q, want it to start with %q", err, tt.wantField)
			}
		})
	}
}
