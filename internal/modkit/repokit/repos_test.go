package repokit

import (
	"context"
	"errors"
	"testing"
)

// txr hands its queryer to fn and then reports commitErr, like a failed COMMIT
type txr struct {
	*copyQ
	calls     int
	commitErr error
}

func (t *txr) Tx(_ context.Context, fn func(Queryer) error) error {
	t.calls++
	if err := fn(t.copyQ); err != nil {
		return err
	}
	return t.commitErr
}

func TestWithTx(t *testing.T) {
	fnErr := errors.New("23505 duplicate run")
	commitErr := errors.New("40001 serialization failure")

	cases := []struct {
		name      string
		fnErr     error
		commitErr error
		want      error
		copied    int
	}{
		{"commit", nil, nil, nil, 2},
		{"fn error", fnErr, nil, fnErr, 2},
		{"commit error", nil, commitErr, commitErr, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := &txr{copyQ: &copyQ{}, commitErr: tc.commitErr}
			err := WithTx(context.Background(), tx, func(q Queryer) error {
				if _, err := q.CopyFrom(context.Background(), "mask_stats", []string{"seq"}, [][]any{{0}, {1}}); err != nil {
					return err
				}
				return tc.fnErr
			})
			if !errors.Is(err, tc.want) || (tc.want == nil && err != nil) {
				t.Fatalf("err = %v want %v", err, tc.want)
			}
			if tx.calls != 1 || tx.copied != tc.copied {
				t.Fatalf("calls=%d copied=%d", tx.calls, tx.copied)
			}
		})
	}
}
