package vault

import (
	"context"
	"errors"
	"testing"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		ref      string
		wantPath string
		wantKey  string
		wantErr  bool
	}{
		{"vault:secret/formcheck#db_password", "secret/formcheck", "db_password", false},
		{"vault:kv/apps/formcheck/prod#pw", "kv/apps/formcheck/prod", "pw", false},
		{"vault:secret/formcheck", "", "", true},
		{"vault:#pw", "", "", true},
		{"vault:secret/formcheck#", "", "", true},
		{"secret/formcheck#pw", "", "", true},
	}
	for _, tt := range tests {
		p, k, err := ParseRef(tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseRef(%q) err = %v, wantErr %v", tt.ref, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrBadRef) {
			t.Errorf("ParseRef(%q) err = %v, want ErrBadRef", tt.ref, err)
		}
		if p != tt.wantPath || k != tt.wantKey {
			t.Errorf("ParseRef(%q) = %q, %q", tt.ref, p, k)
		}
	}
}

func TestResolvePlainValue(t *testing.T) {
	var c Client // plain values never reach the API
	got, err := c.Resolve(context.Background(), "hunter2")
	if err != nil || got != "hunter2" {
		t.Fatalf("Resolve = %q, %v", got, err)
	}

	if _, err := c.Resolve(context.Background(), "vault:nokey"); !errors.Is(err, ErrBadRef) {
		t.Fatalf("Resolve bad ref err = %v", err)
	}
}

func TestSplitMount(t *testing.T) {
	cases := map[string][2]string{
		"secret/formcheck":     {"secret", "formcheck"},
		"kv/apps/formcheck/db": {"kv", "apps/formcheck/db"},
		"secret":               {"secret", ""},
	}
	for in, want := range cases {
		m, r := splitMount(in)
		if m != want[0] || r != want[1] {
			t.Errorf("splitMount(%q) = %q, %q", in, m, r)
		}
	}
}

func fakeClient(calls *[]string, data map[string]any, err error) *Client {
	return &Client{
		read: func(_ context.Context, mount, rel string) (map[string]any, error) {
			*calls = append(*calls, mount+"|"+rel)
			return data, err
		},
		logFn: func(string, ...any) {},
	}
}

func TestResolveReference(t *testing.T) {
	var calls []string
	c := fakeClient(&calls, map[string]any{"db_password": "s3cret", "port": 3306}, nil)

	got, err := c.Resolve(context.Background(), "vault:secret/formcheck/prod#db_password")
	if err != nil || got != "s3cret" {
		t.Fatalf("Resolve = %q, %v", got, err)
	}
	if len(calls) != 1 || calls[0] != "secret|formcheck/prod" {
		t.Errorf("read calls = %v", calls)
	}

	if _, err := c.Resolve(context.Background(), "vault:secret/formcheck#missing"); err == nil {
		t.Error("expected error for missing key")
	}
	if _, err := c.Resolve(context.Background(), "vault:secret/formcheck#port"); err == nil {
		t.Error("expected error for non-string value")
	}
}

func TestResolveReadError(t *testing.T) {
	var calls []string
	boom := errors.New("permission denied")
	c := fakeClient(&calls, nil, boom)

	if _, err := c.Resolve(context.Background(), "vault:secret/formcheck#pw"); !errors.Is(err, boom) {
		t.Fatalf("Resolve err = %v, want wrapped %v", err, boom)
	}
}

func TestResolveUnconfigured(t *testing.T) {
	var c Client
	if _, err := c.Resolve(context.Background(), "vault:secret/formcheck#pw"); err == nil {
		t.Fatal("expected error from zero Client")
	}
}
