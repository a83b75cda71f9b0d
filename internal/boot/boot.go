// Package boot provides the shared start-up logic of every binary: AWS
// config, SSM secret fetch, history store selection, and the composition of
// the pipeline and assistant from configuration.
//
// Each main is a short sequence of these helpers followed by its own surface
// (CLI commands, HTTP server, Lambda handler, MCP server).
package boot

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog/log"
)

// Secret is an API key that is read from the environment, or fetched from
// SSM Parameter Store when the variable is empty.
type Secret struct {
	// Env is the variable the key is exported under.
	Env string
	// ParamEnv names the variable overriding the SSM parameter path.
	ParamEnv     string
	DefaultParam string
}

// Secrets fetched by the Lambda binary.
var (
	GeminiKey = Secret{Env: "GEMINI_API_KEY", ParamEnv: "SSM_GEMINI_KEY_PARAM", DefaultParam: "/campaign-intel/prod/gemini-api-key"}
	OpenAIKey = Secret{Env: "OPENAI_API_KEY", ParamEnv: "SSM_OPENAI_KEY_PARAM", DefaultParam: "/campaign-intel/prod/openai-api-key"}
	QlooKey   = Secret{Env: "QLOO_API_KEY", ParamEnv: "SSM_QLOO_KEY_PARAM", DefaultParam: "/campaign-intel/prod/qloo-api-key"}
)

// Param returns the SSM parameter path for s.
func (s Secret) Param() string {
	if p := os.Getenv(s.ParamEnv); p != "" {
		return p
	}
	return s.DefaultParam
}

// SSMAPI is the subset of the SSM client used here.
type SSMAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

var _ SSMAPI = (*ssm.Client)(nil)

// InitAWS loads the default AWS config.
func InitAWS(ctx context.Context) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	log.Debug().Str("region", cfg.Region).Msg("AWS config loaded")
	return cfg, nil
}

// LoadSecret sets s.Env from SSM unless it is already set. The decrypted
// value is exported so config.Load picks it up.
func LoadSecret(ctx context.Context, client SSMAPI, s Secret) error {
	if os.Getenv(s.Env) != "" {
		return nil
	}
	param := s.Param()
	start := time.Now()
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(param),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("read %s from SSM %s: %w", s.Env, param, err)
	}
	if out.Parameter == nil || aws.ToString(out.Parameter.Value) == "" {
		return fmt.Errorf("SSM parameter %s is empty", param)
	}
	if err := os.Setenv(s.Env, aws.ToString(out.Parameter.Value)); err != nil {
		return fmt.Errorf("set %s: %w", s.Env, err)
	}
	log.Debug().Str("param", param).Dur("elapsed", time.Since(start)).Msg("Secret loaded from SSM")
	return nil
}
