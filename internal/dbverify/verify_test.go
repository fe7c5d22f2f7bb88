package dbverify

import (
	"context"
	"errors"
	"testing"

	"querychat/cli/internal/config"
)

func TestURL(t *testing.T) {
	tests := []struct {
		name string
		prof config.Profile
		want string
	}{
		{
			name: "full credentials",
			prof: config.Profile{Host: "db.internal", Port: 5432, User: "analyst", Password: "pw", Database: "sales"},
			want: "postgres://analyst:pw@db.internal:5432/sales",
		},
		{
			name: "password with reserved characters is escaped",
			prof: config.Profile{Host: "h", Port: 5432, User: "u", Password: "p@ss/w:rd", Database: "d"},
			want: "postgres://u:p%40ss%2Fw:rd@h:5432/d",
		},
		{
			name: "user without password",
			prof: config.Profile{Host: "h", Port: 5433, User: "u", Database: "d"},
			want: "postgres://u@h:5433/d",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := URL(tt.prof); got != tt.want {
				t.Errorf("URL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPingRejectsNonPostgres(t *testing.T) {
	err := Ping(context.Background(), config.Profile{Type: config.DBTypeMySQL})
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Ping() error = %v, want ErrUnsupported", err)
	}
}
