package tools

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"zantaracore/internal/errs"
)

// VisionAnalysisTool describes an image (a passport page, a KITAS card, a
// screenshot of an official letter) stored in S3, using Claude's multimodal
// input. Admin-gated since it touches a user's uploaded documents.
type VisionAnalysisTool struct {
	S3Client    *s3.Client
	Bucket      string
	AnthropicKey string
	Model       string
}

func (t *VisionAnalysisTool) Describe() ToolSpec {
	return ToolSpec{
		Name:        "vision_analysis",
		Description: "Analyze an uploaded document image (passport, KITAS, official letter) stored in object storage and describe its contents.",
		AdminOnly:   true,
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"object_key": map[string]any{"type": "string", "description": "the S3 object key of the image"},
				"question":   map[string]any{"type": "string", "description": "what to look for in the image"},
			},
			"required": []string{"object_key"},
		},
	}
}

func (t *VisionAnalysisTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	if err := validateRequired(args, "object_key"); err != nil {
		return "", err
	}
	key, _ := args["object_key"].(string)
	question, _ := args["question"].(string)
	if question == "" {
		question = "Describe the relevant document details in this image."
	}

	obj, err := t.S3Client.GetObject(ctx, &s3.GetObjectInput{Bucket: &t.Bucket, Key: &key})
	if err != nil {
		return "", fmt.Errorf("%w: fetching %s: %v", errs.ErrUpstreamUnavailable, key, err)
	}
	defer obj.Body.Close()

	buf := new(bytes.Buffer)
	if _, err := io.Copy(buf, obj.Body); err != nil {
		return "", fmt.Errorf("%w: reading image body: %v", errs.ErrUpstreamUnavailable, err)
	}

	mediaType := "image/jpeg"
	if obj.ContentType != nil && *obj.ContentType != "" {
		mediaType = *obj.ContentType
	}
	encoded := base64.StdEncoding.EncodeToString(buf.Bytes())

	client := anthropic.NewClient(option.WithAPIKey(t.AnthropicKey))
	model := t.Model
	if model == "" {
		model = string(anthropic.ModelClaude3_5SonnetLatest)
	}

	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, encoded),
				anthropic.NewTextBlock(question),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrUpstreamUnavailable, err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if text := block.Text; text != "" {
			sb.WriteString(text)
		}
	}
	return sb.String(), nil
}
