package domain

import "testing"

func TestParseEndpoint(t *testing.T) {
	tests := []struct {
		in      string
		want    Endpoint
		wantErr bool
	}{
		{"127.0.0.1:2577", Endpoint{Host: "127.0.0.1", Port: 2577}, false},
		{"hub.internal:2575", Endpoint{Host: "hub.internal", Port: 2575}, false},
		{"[::1]:2577", Endpoint{Host: "::1", Port: 2577}, false},
		{"no-port", Endpoint{}, true},
		{"host:notnum", Endpoint{}, true},
		{"host:0", Endpoint{}, true},
		{"host:99999", Endpoint{}, true},
		{"", Endpoint{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEndpoint(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseEndpoint(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseEndpoint(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEndpointString(t *testing.T) {
	ep := Endpoint{Host: "::1", Port: 2577}
	if got := ep.String(); got != "[::1]:2577" {
		t.Errorf("String() = %q, want [::1]:2577", got)
	}
}
