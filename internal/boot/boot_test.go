package boot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/fpang/campaign-intel/internal/config"
	"github.com/fpang/campaign-intel/internal/store"
)

type fakeSSM struct {
	params map[string]string
	calls  []string
}

func (f *fakeSSM) GetParameter(_ context.Context, in *ssm.GetParameterInput, _ ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	name := aws.ToString(in.Name)
	f.calls = append(f.calls, name)
	if !aws.ToBool(in.WithDecryption) {
		return nil, errors.New("secret read without decryption")
	}
	v, ok := f.params[name]
	if !ok {
		return nil, &types.ParameterNotFound{}
	}
	return &ssm.GetParameterOutput{Parameter: &types.Parameter{Name: in.Name, Value: aws.String(v)}}, nil
}

func TestLoadSecret(t *testing.T) {
	secret := Secret{Env: "CAMPAIGN_TEST_KEY", ParamEnv: "CAMPAIGN_TEST_KEY_PARAM", DefaultParam: "/test/key"}

	t.Run("fetches when unset", func(t *testing.T) {
		t.Setenv(secret.Env, "")
		f := &fakeSSM{params: map[string]string{"/test/key": "s3cret"}}
		if err := LoadSecret(context.Background(), f, secret); err != nil {
			t.Fatalf("LoadSecret: %v", err)
		}
		if got := os.Getenv(secret.Env); got != "s3cret" {
			t.Errorf("%s = %q, want s3cret", secret.Env, got)
		}
	})

	t.Run("env wins", func(t *testing.T) {
		t.Setenv(secret.Env, "from-env")
		f := &fakeSSM{}
		if err := LoadSecret(context.Background(), f, secret); err != nil {
			t.Fatalf("LoadSecret: %v", err)
		}
		if len(f.calls) != 0 {
			t.Errorf("SSM called %v with the variable already set", f.calls)
		}
	})

	t.Run("param override", func(t *testing.T) {
		t.Setenv(secret.Env, "")
		t.Setenv(secret.ParamEnv, "/custom/key")
		f := &fakeSSM{params: map[string]string{"/custom/key": "custom"}}
		if err := LoadSecret(context.Background(), f, secret); err != nil {
			t.Fatalf("LoadSecret: %v", err)
		}
		if got := os.Getenv(secret.Env); got != "custom" {
			t.Errorf("%s = %q, want custom", secret.Env, got)
		}
	})

	t.Run("missing parameter", func(t *testing.T) {
		t.Setenv(secret.Env, "")
		var notFound *types.ParameterNotFound
		err := LoadSecret(context.Background(), &fakeSSM{}, secret)
		if !errors.As(err, &notFound) {
			t.Fatalf("err = %v, want ParameterNotFound", err)
		}
	})
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "test",
		LLM:         config.LLMConfig{Provider: config.ProviderGemini},
		Qloo:        config.QlooConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second, Concurrency: 1},
		History: config.HistoryConfig{
			Backend: config.BackendMemory,
			Path:    filepath.Join(t.TempDir(), "history.json"),
			Key:     "test_history",
			TTL:     time.Hour,
		},
		Server: config.ServerConfig{Port: 8080},
	}
}

func failAWS(t *testing.T) AWSLoader {
	return func(context.Context) (aws.Config, error) {
		t.Error("AWS config loaded for a configuration that does not need it")
		return aws.Config{}, errors.New("no AWS in tests")
	}
}

func TestNewHistoryStore(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		backend string
		want    string
	}{
		{config.BackendMemory, "*store.MemoryStore"},
		{config.BackendFile, "*store.FileStore"},
		{config.BackendRedis, "*store.RedisStore"},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.History.Backend = tt.backend
			cfg.History.RedisAddr = mr.Addr()

			st, err := NewHistoryStore(context.Background(), cfg, failAWS(t))
			if err != nil {
				t.Fatalf("NewHistoryStore: %v", err)
			}
			defer st.Close()
			if got := fmt.Sprintf("%T", st); got != tt.want {
				t.Errorf("store = %s, want %s", got, tt.want)
			}
			if err := st.Init(context.Background()); err != nil {
				t.Fatalf("Init: %v", err)
			}
		})
	}
}

func TestNewHistoryStore_Dynamo(t *testing.T) {
	cfg := testConfig(t)
	cfg.History.Backend = config.BackendDynamo
	cfg.History.DynamoTable = "history"

	calls := 0
	loader := func(context.Context) (aws.Config, error) {
		calls++
		return aws.Config{Region: "us-east-1"}, nil
	}
	st, err := NewHistoryStore(context.Background(), cfg, loader)
	if err != nil {
		t.Fatalf("NewHistoryStore: %v", err)
	}
	if _, ok := st.(*store.DynamoStore); !ok {
		t.Errorf("store = %T, want *store.DynamoStore", st)
	}
	if calls != 1 {
		t.Errorf("AWS loader called %d times, want 1", calls)
	}

	cfg.History.Backend = "sqlite"
	if _, err := NewHistoryStore(context.Background(), cfg, loader); err == nil {
		t.Error("unknown backend accepted")
	}
}

func TestNew_WithoutKeysOrAWS(t *testing.T) {
	cfg := testConfig(t)
	svc, err := New(context.Background(), cfg, failAWS(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer svc.Close(context.Background())

	if svc.Generator != nil {
		t.Error("generator built without an API key")
	}
	if svc.Archive != nil {
		t.Error("archive enabled without a bucket")
	}
	if svc.Pipeline == nil || svc.Assistant == nil || svc.Qloo == nil || svc.Analyzer == nil {
		t.Errorf("incomplete services: %+v", svc)
	}

	// The assistant saves into the configured store.
	id := svc.Assistant.Open(nil).ID
	if _, err := svc.Assistant.Send(context.Background(), id, "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if err := svc.Assistant.Close(context.Background(), id); err != nil {
		t.Fatalf("Close: %v", err)
	}
	recs, err := svc.History.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(recs) != 1 || recs[0].ID != id {
		t.Errorf("history = %+v, want the closed session", recs)
	}
}

func TestOnceAWS(t *testing.T) {
	calls := 0
	load := onceAWS(func(context.Context) (aws.Config, error) {
		calls++
		return aws.Config{Region: "eu-west-1"}, nil
	})
	for range 3 {
		cfg, err := load(context.Background())
		if err != nil || cfg.Region != "eu-west-1" {
			t.Fatalf("load = %v, %v", cfg.Region, err)
		}
	}
	if calls != 1 {
		t.Errorf("loader called %d times, want 1", calls)
	}
}
