package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/CreditScoring/internal/scoring"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	app := newApp()
	app.Writer = &buf
	app.ErrWriter = &buf
	err := app.Run(context.Background(), append([]string{"creditscoring"}, args...))
	return buf.String(), err
}

func TestScoreCommand(t *testing.T) {
	out, err := runApp(t, "score", "--age=35", "--income=65000", "--months-on-book=24", "--credit-limit=15000", "--seed=3")
	require.NoError(t, err)

	var resp scoring.PredictionResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "low_risk", resp.Prediction)
	assert.Equal(t, 0.99, resp.Score)
	assert.Equal(t, "1.0-tabular", resp.ModelVersion)
}

func TestScoreCommandExplain(t *testing.T) {
	out, err := runApp(t, "score", "--age=20", "--income=0", "--months-on-book=0", "--credit-limit=0", "--explain")
	require.NoError(t, err)

	var result scoring.ScoringResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Len(t, result.Factors, 4)
	assert.Equal(t, "high_risk", result.Prediction)
}

func TestScoreCommandRejectsInvalid(t *testing.T) {
	_, err := runApp(t, "score", "--age=15", "--income=-1000", "--months-on-book=24", "--credit-limit=15000")

	var verr *scoring.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"age", "income"}, verr.Fields())
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := newLogger("debug", "json", &buf)
	require.NoError(t, err)
	logger.Debug("hello")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	logger, err = newLogger("warn", "text", &buf)
	require.NoError(t, err)
	logger.Info("dropped")
	assert.Empty(t, buf.String())

	_, err = newLogger("loud", "json", &buf)
	assert.Error(t, err)
	_, err = newLogger("info", "xml", &buf)
	assert.Error(t, err)
}
