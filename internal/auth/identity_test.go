package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/employee-service/internal/apperror"
)

func TestCurrentIdentity_PanicsOutsideScope(t *testing.T) {
	assert.Panics(t, func() {
		CurrentIdentity(context.Background())
	})
}

func TestRunWithIdentity(t *testing.T) {
	outer := context.Background()
	called := false

	RunWithIdentity(outer, Identity{ID: "Kerry Liau"}, func(ctx context.Context) {
		called = true
		assert.Equal(t, "Kerry Liau", CurrentIdentity(ctx).ID)
	})

	require.True(t, called)
	_, ok := IdentityFromContext(outer)
	assert.False(t, ok, "binding must not leak into the parent context")
}

func TestRunWithIdentity_TornDownOnPanic(t *testing.T) {
	outer := context.Background()

	assert.Panics(t, func() {
		RunWithIdentity(outer, Identity{ID: "x"}, func(ctx context.Context) {
			panic("boom")
		})
	})

	_, ok := IdentityFromContext(outer)
	assert.False(t, ok)
}

func TestIdentity_ConcurrentRequestsIsolated(t *testing.T) {
	const n = 64
	var wg sync.WaitGroup
	errs := make(chan error, n)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := fmt.Sprintf("user-%d", i)
			RunWithIdentity(context.Background(), Identity{ID: want}, func(ctx context.Context) {
				if got := CurrentIdentity(ctx).ID; got != want {
					errs <- fmt.Errorf("goroutine %d saw %q", i, got)
				}
			})
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  []string // nil = header absent
		want    string
		wantMsg string
	}{
		{name: "absent", header: nil, wantMsg: MsgNoAuthHeader},
		{name: "basic scheme", header: []string{"Basic dXNlcjpwYXNz"}, wantMsg: MsgIncorrectAuthFormat},
		{name: "lowercase bearer", header: []string{"bearer abc"}, wantMsg: MsgIncorrectAuthFormat},
		{name: "no space", header: []string{"Bearer"}, wantMsg: MsgIncorrectAuthFormat},
		{name: "empty value", header: []string{""}, wantMsg: MsgIncorrectAuthFormat},
		{name: "simple", header: []string{"Bearer abc"}, want: "abc"},
		{name: "spaces kept", header: []string{"Bearer Kerry Liau"}, want: "Kerry Liau"},
		{name: "empty token", header: []string{"Bearer "}, want: ""},
		{name: "double space", header: []string{"Bearer  x"}, want: " x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for _, v := range tt.header {
				h.Add("Authorization", v)
			}

			got, err := BearerToken(h)
			if tt.wantMsg != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperror.ErrUnauthorized))
				assert.Equal(t, tt.wantMsg, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
