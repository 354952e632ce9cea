package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type fakeConnectivity struct {
	ok  bool
	err error
}

func (f fakeConnectivity) CheckConnectivity(context.Context) (bool, error) { return f.ok, f.err }

func TestRunChecks(t *testing.T) {
	tests := []struct {
		name    string
		store   fakePinger
		pub     fakeConnectivity
		want    []string
		wantErr string
	}{
		{name: "all healthy", pub: fakeConnectivity{ok: true}, want: []string{"database:  ok", "publisher: ok"}},
		{name: "not logged in", pub: fakeConnectivity{ok: false}, want: []string{"publisher: FAIL (not logged in)"}, wantErr: "1 check(s) failed"},
		{
			name:    "both down",
			store:   fakePinger{err: errors.New("connection refused")},
			pub:     fakeConnectivity{err: errors.New("timeout")},
			want:    []string{"database:  FAIL (connection refused)", "publisher: FAIL (timeout)"},
			wantErr: "2 check(s) failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runChecks(context.Background(), &out, tt.store, tt.pub)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			for _, w := range tt.want {
				assert.Contains(t, out.String(), w)
			}
		})
	}
}
