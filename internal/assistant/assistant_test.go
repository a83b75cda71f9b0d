package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fpang/campaign-intel/internal/analysis"
	"github.com/fpang/campaign-intel/internal/analytics"
	"github.com/fpang/campaign-intel/internal/campaign"
	"github.com/fpang/campaign-intel/internal/llm"
	"github.com/fpang/campaign-intel/internal/qloo"
	"github.com/fpang/campaign-intel/internal/store"
	"github.com/google/go-cmp/cmp"
)

// recorder is a Generator that captures prompts and replies "reply N".
type recorder struct {
	mu      sync.Mutex
	name    string
	prompts []string
	err     error
}

func (r *recorder) Name() string { return r.name }

func (r *recorder) Generate(_ context.Context, prompt string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prompts = append(r.prompts, prompt)
	if r.err != nil {
		return "", r.err
	}
	return fmt.Sprintf(" reply %d \n", len(r.prompts)), nil
}

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.prompts) == 0 {
		return ""
	}
	return r.prompts[len(r.prompts)-1]
}

var fixedNow = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

func newAssistant(gen llm.Generator, st store.Store) *Assistant {
	a := New(gen, st)
	a.now = func() time.Time { return fixedNow }
	return a
}

func acmeContext() *Context {
	in := campaign.Input{
		BrandName:      "Acme",
		Category:       "Technology",
		ProductDetails: "A smart home hub",
		Location:       "Berlin",
		TargetScope:    "Product Launch",
		Budget:         "$5,000 - $10,000",
	}
	an := analysis.Fallback()
	an.Overview.TargetAudience.Primary = "Urban professionals 25-40"
	an.QlooInsights.KeyCulturalFindings = []string{"Design-led tech resonates in Mitte"}
	an.QlooInsights.LocationAnalysis.TopLocations = []analysis.TopLocation{{Name: "Mitte", Score: 91}}
	results := []qloo.Result{{Success: true}, {Success: true}, {Error: "HTTP 500"}}
	return NewContext(in,
		analysis.Result{Kind: analysis.KindParsed, Analysis: an, Source: "gemini"},
		analytics.Analytics{}, analytics.Charts{}, results)
}

func TestOpen_Welcome(t *testing.T) {
	a := newAssistant(&recorder{name: "gemini"}, store.NewMemoryStore())

	general := a.Open(nil)
	if general.HasContext || len(general.Messages) != 1 {
		t.Fatalf("general session = %+v", general)
	}
	if !strings.Contains(general.Messages[0].Content, "general PR campaign guidance") {
		t.Errorf("general welcome = %q", general.Messages[0].Content)
	}

	withData := a.Open(acmeContext())
	if !withData.HasContext {
		t.Fatal("session with analysis should report context")
	}
	w := withData.Messages[0].Content
	for _, want := range []string{"Qloo & gemini", "2 successful cultural intelligence responses", "Product Launch campaign for Acme in Berlin", "3 data visualizations"} {
		if !strings.Contains(w, want) {
			t.Errorf("welcome missing %q:\n%s", want, w)
		}
	}
	if general.ID != "session_1772600767000" || withData.ID != "session_1772600767001" {
		t.Errorf("session IDs = %s, %s", general.ID, withData.ID)
	}
}

func TestSend_CarriesLastFiveMessages(t *testing.T) {
	gen := &recorder{name: "gemini"}
	a := newAssistant(gen, store.NewMemoryStore())
	id := a.Open(nil).ID

	for i := 1; i <= 4; i++ {
		reply, err := a.Send(context.Background(), id, fmt.Sprintf("question %d", i))
		if err != nil {
			t.Fatal(err)
		}
		if reply.Content != fmt.Sprintf("reply %d", i) || reply.Role != store.RoleAssistant || reply.IsError {
			t.Errorf("reply %d = %+v", i, reply)
		}
	}

	// Before the fourth question the transcript is welcome, q1, r1, q2, r2, q3, r3.
	prompt := gen.last()
	for _, want := range []string{"Assistant: reply 1", "User: question 2", "Assistant: reply 3", `USER REQUEST: "question 4"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	for _, unwanted := range []string{"User: question 1", "Hello!"} {
		if strings.Contains(prompt, unwanted) {
			t.Errorf("prompt should not carry %q", unwanted)
		}
	}

	v, _ := a.Session(id)
	if len(v.Messages) != 9 {
		t.Errorf("transcript length = %d, want 9", len(v.Messages))
	}
}

func TestRecentLines(t *testing.T) {
	var msgs []store.Message
	for i := range 7 {
		role := store.RoleUser
		if i%2 == 0 {
			role = store.RoleAssistant
		}
		msgs = append(msgs, store.Message{Role: role, Content: fmt.Sprint(i)})
	}
	want := []string{"Assistant: 2", "User: 3", "Assistant: 4", "User: 5", "Assistant: 6"}
	if diff := cmp.Diff(want, recentLines(msgs)); diff != "" {
		t.Errorf("recentLines mismatch (-want +got):\n%s", diff)
	}
	if got := recentLines(msgs[:2]); len(got) != 2 {
		t.Errorf("short transcript = %v", got)
	}
}

func TestSend_ContextPrompt(t *testing.T) {
	gen := &recorder{name: "gemini"}
	a := newAssistant(gen, store.NewMemoryStore())
	id := a.Open(acmeContext()).ID

	if _, err := a.Send(context.Background(), id, "Which venues should we use?"); err != nil {
		t.Fatal(err)
	}
	prompt := gen.last()
	for _, want := range []string{
		"complete Qloo and gemini analysis",
		"- Brand Name: Acme",
		"• Design-led tech resonates in Mitte",
		"COMPLETE ANALYSIS:",
		`"executiveSummary"`,
		`USER REQUEST: "Which venues should we use?"`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestQuickAction_TwoTurns(t *testing.T) {
	gen := &recorder{name: "gemini"}
	a := newAssistant(gen, store.NewMemoryStore())
	id := a.Open(acmeContext()).ID

	question, err := a.QuickAction(id, ActionPoster)
	if err != nil {
		t.Fatal(err)
	}
	if len(gen.prompts) != 0 {
		t.Fatal("the preference question must not call the model")
	}
	for _, want := range []string{
		"Perfect! I have your complete Product Launch analysis data for Acme targeting Berlin.",
		"targeting Urban professionals 25-40 in Berlin with a $5,000 - $10,000 budget",
		"**Visual Style**",
		"local cultural elements from Berlin",
	} {
		if !strings.Contains(question.Content, want) {
			t.Errorf("question missing %q:\n%s", want, question.Content)
		}
	}
	v, _ := a.Session(id)
	if v.PendingAction != ActionPoster {
		t.Errorf("pending = %q", v.PendingAction)
	}
	if v.Messages[1].Content != "Generate posters for my campaign" {
		t.Errorf("user line = %q", v.Messages[1].Content)
	}

	if _, err := a.Send(context.Background(), id, "bold neon colors"); err != nil {
		t.Fatal(err)
	}
	prompt := gen.last()
	for _, want := range []string{
		"Generate EXCLUSIVE poster designs",
		"USER PREFERENCES: bold neon colors",
		"QLOO LOCATION ANALYSIS:",
		`"name": "Mitte"`,
		"Generate 3-5 specific poster concepts",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("action prompt missing %q", want)
		}
	}

	if _, err := a.Send(context.Background(), id, "thanks"); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(gen.last(), "USER PREFERENCES") {
		t.Error("the action should be consumed after one answer")
	}
}

func TestQuickAction_WithoutContext(t *testing.T) {
	gen := &recorder{name: "gemini"}
	a := newAssistant(gen, store.NewMemoryStore())
	id := a.Open(nil).ID

	q, err := a.QuickAction(id, ActionIdeas)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(q.Content, "I'd be happy to help you generate ideas!") {
		t.Errorf("question = %q", q.Content)
	}
	if _, err := a.Send(context.Background(), id, "low budget"); err != nil {
		t.Fatal(err)
	}
	if p := gen.last(); !strings.Contains(p, "Generate innovative and creative campaign ideas") || !strings.Contains(p, "Preferences: low budget") {
		t.Errorf("general action prompt = %q", p)
	}
}

func TestActionsAreComplete(t *testing.T) {
	c := acmeContext()
	for _, act := range Actions() {
		if act.Prompt == "" || act.subject == "" || act.deliverables == "" || len(act.questions) == 0 {
			t.Errorf("%s is incomplete", act.ID)
		}
		if p := act.prompt(c, ""); !strings.Contains(p, "Generate based on Qloo cultural insights and analytics data") {
			t.Errorf("%s: empty preference should use the default line", act.ID)
		}
	}
	if len(Actions()) != 6 {
		t.Errorf("got %d actions, want 6", len(Actions()))
	}
}

func TestErrors(t *testing.T) {
	a := newAssistant(&recorder{name: "gemini"}, store.NewMemoryStore())
	id := a.Open(nil).ID

	if _, err := a.Send(context.Background(), "session_0", "hi"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown session = %v", err)
	}
	if _, err := a.Send(context.Background(), id, "   "); !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("empty message = %v", err)
	}
	if _, err := a.QuickAction(id, "jingle"); !errors.Is(err, ErrUnknownAction) {
		t.Errorf("unknown action = %v", err)
	}
}

func TestSend_InlineErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"api key", &llm.Error{Kind: llm.KindAPIKey, Provider: "gemini", Message: "API key is invalid"},
			"API Key Error: Please check your gemini API key configuration."},
		{"quota", &llm.Error{Kind: llm.KindQuota, Message: "quota"},
			"Rate Limit: Too many requests. Please wait a moment and try again."},
		{"network", errors.New("dial tcp: connection refused"),
			"Network Error: Please check your internet connection and try again."},
		{"timeout", context.DeadlineExceeded,
			"Timeout: The request took too long. Please try again."},
		{"unknown", errors.New("model overloaded"),
			"Error: model overloaded. Please try again."},
		{"classified unknown", &llm.Error{Kind: llm.KindUnknown, Message: "bad request"},
			"Error: bad request. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newAssistant(&recorder{name: "gemini", err: tt.err}, store.NewMemoryStore())
			id := a.Open(nil).ID
			reply, err := a.Send(context.Background(), id, "hello")
			if err != nil {
				t.Fatal(err)
			}
			if !reply.IsError || reply.Content != tt.want {
				t.Errorf("reply = %+v, want %q", reply, tt.want)
			}
		})
	}

	a := newAssistant(nil, store.NewMemoryStore())
	reply, _ := a.Send(context.Background(), a.Open(nil).ID, "hello")
	if reply.Content != "Error: no language model configured. Please try again." {
		t.Errorf("nil generator reply = %q", reply.Content)
	}
}

func TestCloseAndLoad(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	a := newAssistant(&recorder{name: "gemini"}, st)
	tick := fixedNow
	a.now = func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}

	idle := a.Open(nil).ID
	if err := a.Close(ctx, idle); err != nil {
		t.Fatal(err)
	}
	if h, _ := a.History(ctx); len(h) != 0 {
		t.Errorf("welcome-only session was saved: %v", h)
	}
	if _, err := a.Session(idle); !errors.Is(err, ErrSessionNotFound) {
		t.Error("closed session should be forgotten")
	}

	general := a.Open(nil).ID
	if _, err := a.Send(ctx, general, "hi"); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(ctx, general); err != nil {
		t.Fatal(err)
	}

	id := a.Open(acmeContext()).ID
	if _, err := a.Send(ctx, id, "hi"); err != nil {
		t.Fatal(err)
	}
	if err := a.Close(ctx, id); err != nil {
		t.Fatal(err)
	}

	h, err := a.History(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(h) != 2 || h[0].ID != id || h[1].ID != general {
		t.Fatalf("history = %+v", h)
	}
	if h[0].Summary != "Session with 2 exchanges" || h[0].CampaignType != "Product Launch" {
		t.Errorf("record = %q / %q", h[0].Summary, h[0].CampaignType)
	}
	if h[1].CampaignType != DefaultCampaignType || h[1].AnalysisData != nil {
		t.Errorf("general record = %+v", h[1])
	}

	v, err := a.Load(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if !v.HasContext || len(v.Messages) != 3 {
		t.Fatalf("restored session = %+v", v)
	}
	gen := &recorder{name: "gemini"}
	a.gen = gen
	if _, err := a.Send(ctx, id, "and next?"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(gen.last(), "- Brand Name: Acme") || !strings.Contains(gen.last(), "User: hi") {
		t.Error("restored session should answer with its saved context and transcript")
	}

	if _, err := a.Load(ctx, "session_missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Load(missing) = %v", err)
	}

	if err := a.Delete(ctx, general); err != nil {
		t.Fatal(err)
	}
	if r, _ := a.HistoryRecord(ctx, general); r != nil {
		t.Error("deleted record still stored")
	}
	if err := a.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if h, _ := a.History(ctx); len(h) != 0 {
		t.Errorf("history after clear = %d", len(h))
	}
}
