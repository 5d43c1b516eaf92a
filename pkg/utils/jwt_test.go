//go:build !integration

package utils

import (
	"testing"
	"time"
)

func TestParseJWT(t *testing.T) {
	valid, err := GenerateJWT("42", "USER", "secret", time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}
	expired, err := GenerateJWT("42", "USER", "secret", -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr bool
	}{
		{"valid", valid, "secret", false},
		{"wrong secret", valid, "other", true},
		{"expired", expired, "secret", true},
		{"garbage", "not.a.token", "secret", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := ParseJWT(tt.token, tt.secret)
			if tt.wantErr {
				if err == nil {
					t.Fatal("want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseJWT: %v", err)
			}
			if claims.UserID != "42" || claims.Role != "USER" {
				t.Errorf("claims = %+v", claims)
			}
		})
	}
}
