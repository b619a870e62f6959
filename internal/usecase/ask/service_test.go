package ask

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/docsync/internal/domain"
	"github.com/kailas-cloud/docsync/internal/domain/payload"
)

type mockGateway struct {
	calls int
	askFn func(ctx context.Context, p payload.Ask) (*payload.AskResponse, error)
}

func (m *mockGateway) Ask(ctx context.Context, p payload.Ask) (*payload.AskResponse, error) {
	m.calls++
	if m.askFn != nil {
		return m.askFn(ctx, p)
	}
	return &payload.AskResponse{}, nil
}

func ptr(s string) *string { return &s }

func TestAsk(t *testing.T) {
	tests := []struct {
		name       string
		resp       *payload.AskResponse
		err        error
		wantText   string
		wantFailed bool
	}{
		{
			name:     "response",
			resp:     &payload.AskResponse{Response: ptr("Paris")},
			wantText: "Paris",
		},
		{
			name:       "error body",
			resp:       &payload.AskResponse{Error: ptr("index empty")},
			wantText:   "Error occurred: index empty",
			wantFailed: true,
		},
		{
			name:       "neither field",
			resp:       &payload.AskResponse{},
			wantText:   "Error occurred: Unknown error",
			wantFailed: true,
		},
		{
			name:       "transport failure",
			err:        errors.Join(domain.ErrTransport, errors.New("timeout")),
			wantText:   "Error occurred: Unknown error",
			wantFailed: true,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gw := &mockGateway{askFn: func(_ context.Context, p payload.Ask) (*payload.AskResponse, error) {
				if p.Question != "capital of France?" {
					t.Errorf("question = %q", p.Question)
				}
				return tc.resp, tc.err
			}}

			a := New(gw, nil).Ask(context.Background(), "capital of France?")

			if a.Text != tc.wantText {
				t.Errorf("text = %q, want %q", a.Text, tc.wantText)
			}
			if a.Failed != tc.wantFailed {
				t.Errorf("failed = %v, want %v", a.Failed, tc.wantFailed)
			}
			if a.Display() != "Response: "+tc.wantText {
				t.Errorf("display = %q", a.Display())
			}
		})
	}
}

func TestAsk_BlankQuestionNotSent(t *testing.T) {
	gw := &mockGateway{}

	a := New(gw, nil).Ask(context.Background(), "   ")

	if !a.Failed || !a.Invalid {
		t.Errorf("expected invalid failed answer, got %+v", a)
	}
	if gw.calls != 0 {
		t.Errorf("expected no gateway call, got %d", gw.calls)
	}
}
