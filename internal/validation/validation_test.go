package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "John Doe",
			wantErr: false,
		},
		{
			name:    "single name",
			input:   "John",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "name too short",
			input:   "J",
			wantErr: true,
		},
		{
			name:    "name with hyphen",
			input:   "Mary-Jane",
			wantErr: false,
		},
		{
			name:    "name with apostrophe",
			input:   "O'Brien",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "password exactly 8 characters",
			password: "pass1234",
			wantErr:  false,
		},
		{
			name:     "password too short",
			password: "pass123",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "long password",
			password: "thisIsAVeryLongPasswordThatShouldBeValid123",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTopicID(t *testing.T) {
	tests := []struct {
		id      string
		wantErr bool
	}{
		{"travel", false},
		{"food-and-drink", false},
		{"", true},
		{"Travel", true},
		{"food drink", true},
		{"-food", true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			err := ValidateTopicID(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateTopicID(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCard(t *testing.T) {
	tests := []struct {
		name        string
		term        string
		translation string
		wantErr     bool
	}{
		{"valid card", "meeting", "встреча", false},
		{"empty term", "", "встреча", true},
		{"blank translation", "meeting", "   ", true},
		{"term too long", strings.Repeat("a", MaxTermLength+1), "x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCard(tt.term, tt.translation)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCard() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateQuestion(t *testing.T) {
	tests := []struct {
		name    string
		answer  string
		options []string
		wantErr bool
	}{
		{"valid question", "встреча", []string{"встреча", "отчёт", "зарплата", "коллега"}, false},
		{"answer missing", "встреча", []string{"отчёт", "зарплата"}, true},
		{"answer twice", "встреча", []string{"встреча", "встреча", "отчёт"}, true},
		{"case differs", "Встреча", []string{"встреча", "отчёт"}, true},
		{"too few options", "встреча", []string{"встреча"}, true},
		{"blank option", "встреча", []string{"встреча", ""}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateQuestion("meeting", tt.answer, tt.options)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateQuestion() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidationErrorField(t *testing.T) {
	err := ValidateQuestion("", "a", []string{"a", "b"})
	ve, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("error type = %T, want ValidationError", err)
	}
	if ve.Field != "term" {
		t.Errorf("Field = %q, want term", ve.Field)
	}
}
