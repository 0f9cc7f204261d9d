package filter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/jmespath/go-jmespath"

	"github.com/nztinversive/NASA-data-analyst-llm/internal/types"
)

// ShellTimeout bounds a $(command) expression
const ShellTimeout = 30 * time.Second

var shellPattern = regexp.MustCompile(`^\$\((.+)\)$`)

// Result narrows an analysis result with an expression and returns the
// selected JSON, indented. The expression is JMESPath, or a shell command
// written as $(command) which receives the result JSON on stdin. An empty
// expression selects the whole result, keys in server order.
func Result(ctx context.Context, result types.AnalysisResult, expression string) (string, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	if strings.TrimSpace(expression) == "" {
		var out bytes.Buffer
		if err := json.Indent(&out, raw, "", "  "); err != nil {
			return "", fmt.Errorf("failed to indent result: %w", err)
		}
		return out.String(), nil
	}
	return Apply(ctx, string(raw), expression)
}

// Apply evaluates expression against a JSON document
func Apply(ctx context.Context, body string, expression string) (string, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return body, nil
	}

	if matches := shellPattern.FindStringSubmatch(expression); len(matches) > 1 {
		out, err := runShell(ctx, body, matches[1])
		if err != nil {
			return "", fmt.Errorf("failed to execute filter command: %w", err)
		}
		return out, nil
	}

	out, err := applyJMESPath(body, expression)
	if err != nil {
		return "", fmt.Errorf("failed to apply filter: %w", err)
	}
	return out, nil
}

func applyJMESPath(jsonStr string, expression string) (string, error) {
	var data interface{}
	if err := json.Unmarshal([]byte(jsonStr), &data); err != nil {
		return "", fmt.Errorf("invalid JSON: %w", err)
	}

	jp, err := jmespath.Compile(expression)
	if err != nil {
		return "", fmt.Errorf("invalid JMESPath expression '%s': %w", expression, err)
	}

	result, err := jp.Search(data)
	if err != nil {
		return "", fmt.Errorf("JMESPath search failed: %w", err)
	}
	if result == nil {
		return "null", nil
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(output), nil
}

func runShell(ctx context.Context, body string, command string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ShellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Stdin = strings.NewReader(body)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := err.Error()
		if stderr.Len() > 0 {
			msg = strings.TrimSpace(stderr.String())
		}
		return "", fmt.Errorf("command '%s' failed: %s", command, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

// IsValid checks an expression without evaluating it
func IsValid(expression string) bool {
	if IsShellCommand(expression) {
		return true
	}
	_, err := jmespath.Compile(expression)
	return err == nil
}

// IsShellCommand reports whether the expression is $(command)
func IsShellCommand(expression string) bool {
	return shellPattern.MatchString(strings.TrimSpace(expression))
}
