/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

var ErrNotFound = errors.New("credentials: token not found")

// SecretsAPI is the part of the Secrets Manager client the resolver uses.
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// Resolver finds tokens locally first and falls back to AWS Secrets Manager.
type Resolver struct {
	secrets SecretsAPI
	log     zerolog.Logger
}

func NewResolver(secrets SecretsAPI, log zerolog.Logger) *Resolver {
	return &Resolver{secrets: secrets, log: log}
}

// NewAWSResolver builds a Resolver over the default AWS credential chain. The AWS config is only
// loaded when a token is missing locally.
func NewAWSResolver(log zerolog.Logger) *Resolver {
	return &Resolver{secrets: &lazySecrets{}, log: log}
}

// Token returns local if non-empty. Otherwise it reads secretID from Secrets Manager; the secret
// string is a JSON object and key selects the field. A plain-string secret is used as-is.
func (r *Resolver) Token(ctx context.Context, local, secretID, key string) (string, error) {
	if v := strings.TrimSpace(local); v != "" {
		return v, nil
	}
	if r.secrets == nil || secretID == "" {
		return "", ErrNotFound
	}
	out, err := r.secrets.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: aws.String(secretID)})
	if err != nil {
		r.log.Error().Err(err).Str("secret_id", secretID).Msg("credentials: secrets manager lookup failed")
		return "", fmt.Errorf("%w: %s: %v", ErrNotFound, secretID, err)
	}
	raw := strings.TrimSpace(aws.ToString(out.SecretString))
	if raw == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrNotFound, secretID)
	}
	if !strings.HasPrefix(raw, "{") {
		return raw, nil
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return "", fmt.Errorf("credentials: parse secret %s: %w", secretID, err)
	}
	v, _ := fields[key].(string)
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("%w: %s has no %s", ErrNotFound, secretID, key)
	}
	r.log.Info().Str("secret_id", secretID).Str("key", key).Msg("credentials: token loaded from secrets manager")
	return strings.TrimSpace(v), nil
}

type lazySecrets struct {
	client *secretsmanager.Client
}

func (l *lazySecrets) GetSecretValue(ctx context.Context, in *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	if l.client == nil {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		l.client = secretsmanager.NewFromConfig(cfg)
	}
	return l.client.GetSecretValue(ctx, in, optFns...)
}
