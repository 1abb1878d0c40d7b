package validation

import (
	"errors"
	"testing"

	"github.com/samirrijal/turismap/internal/core/domain"
)

type credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type point struct {
	Lat float64 `query:"lat" validate:"latitude"`
	Lng float64 `query:"lng" validate:"longitude"`
}

func TestStruct_Valid(t *testing.T) {
	if err := Struct(&credentials{Email: "ana@example.com", Password: "secreto"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStruct_Messages(t *testing.T) {
	tests := []struct {
		name      string
		in        interface{}
		wantField string
		wantMsg   string
	}{
		{"missing email", &credentials{Password: "secreto"}, "email", "Email y contraseña son requeridos"},
		{"bad email", &credentials{Email: "nope", Password: "secreto"}, "email", "Email inválido"},
		{"short password", &credentials{Email: "a@b.co", Password: "123"}, "password", "La contraseña debe tener al menos 6 caracteres"},
		{"bad latitude", &point{Lat: 91, Lng: 0}, "lat", "Coordenadas inválidas. Lat debe estar entre -90 y 90, lng entre -180 y 180"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.wantField {
				t.Errorf("field = %q, want %q", vErr.Field, tt.wantField)
			}
			if vErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", vErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestVar(t *testing.T) {
	if err := Var("radius", 5000, "gt=0,lte=50000"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := Var("radius", 60000, "gt=0,lte=50000")
	var vErr *domain.ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "radius" {
		t.Fatalf("expected radius ValidationError, got %v", err)
	}
}
