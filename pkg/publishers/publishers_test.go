package publishers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adda-Baaj/seithi/internal/logger"
)

func sampleEvent() Event {
	return Event{
		ID:         "evt-1",
		UserID:     "user-7",
		Activity:   "click",
		Title:      "Chennai rain alert",
		URL:        "https://tamil.oneindia.com/news/1.html",
		OccurredAt: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
}

func TestParseRegistryYAML(t *testing.T) {
	doc := `
publishers:
  - id: clicks-sqs
    type: QUEUE
    activities: [" Click ", "read_aloud"]
    queue:
      provider: aws-sqs
      aws:
        uri: https://sqs.ap-south-1.amazonaws.com/1/history
        region: ap-south-1
  - id: hook
    type: http
    enabled: false
    http:
      url: " https://hooks.example.com/history "
      headers:
        X-Token: abc
        Empty: ""
`
	reg, err := ParseRegistry([]byte(doc), ".yaml")
	require.NoError(t, err)
	require.Len(t, reg.All(), 2)

	sqsCfg, ok := reg.ByID("clicks-sqs")
	require.True(t, ok)
	assert.Equal(t, TypeQueue, sqsCfg.Type)
	assert.Equal(t, []string{"click", "read_aloud"}, sqsCfg.Activities)
	assert.True(t, sqsCfg.Accepts("CLICK"))
	assert.False(t, sqsCfg.Accepts("voice_search"))

	hook, ok := reg.ByID("hook")
	require.True(t, ok)
	assert.Equal(t, "https://hooks.example.com/history", hook.HTTP.URL)
	assert.Equal(t, http.MethodPost, hook.HTTP.Method)
	assert.Equal(t, httpDefaultTimeoutSeconds, hook.HTTP.TimeoutSeconds)
	assert.Equal(t, map[string]string{"X-Token": "abc"}, hook.HTTP.Headers)
	assert.True(t, hook.Accepts("anything"))

	enabled := reg.Enabled()
	require.Len(t, enabled, 1)
	assert.Equal(t, "clicks-sqs", enabled[0].ID)
}

func TestParseRegistryJSON(t *testing.T) {
	doc := `{"publishers":[{"id":"ps","type":"queue","queue":{"provider":"gcp","gcp":{"project_id":"p","topic":"history"}}}]}`
	reg, err := ParseRegistry([]byte(doc), ".json")
	require.NoError(t, err)
	cfg, ok := reg.ByID("ps")
	require.True(t, ok)
	assert.Equal(t, "history", cfg.Queue.GCP.Topic)
}

func TestParseRegistryRejects(t *testing.T) {
	cases := map[string]string{
		"empty":          "publishers: []",
		"no id":          "publishers:\n  - type: http\n    http: {url: https://x}",
		"unknown type":   "publishers:\n  - id: a\n    type: smtp",
		"http no url":    "publishers:\n  - id: a\n    type: http",
		"sqs no region":  "publishers:\n  - id: a\n    type: queue\n    queue: {provider: aws-sqs, aws: {uri: https://q}}",
		"sns half keys":  "publishers:\n  - id: a\n    type: queue\n    queue: {provider: aws-sns, sns: {topic_arn: arn, region: r, access_key_id: k}}",
		"azure provider": "publishers:\n  - id: a\n    type: queue\n    queue: {provider: azure}",
		"duplicate":      "publishers:\n  - {id: a, type: http, http: {url: https://x}}\n  - {id: a, type: http, http: {url: https://y}}",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(doc), ".yml")
			assert.Error(t, err)
		})
	}
}

func TestLoadRegistryExpandsEnv(t *testing.T) {
	t.Setenv("SEITHI_TEST_HOOK", "https://hooks.example.com/env")
	path := t.TempDir() + "/publishers.yaml"
	require.NoError(t, writeFile(path, "publishers:\n  - id: hook\n    type: http\n    http:\n      url: ${SEITHI_TEST_HOOK}\n"))

	reg, err := LoadRegistry(path)
	require.NoError(t, err)
	cfg, _ := reg.ByID("hook")
	assert.Equal(t, "https://hooks.example.com/env", cfg.HTTP.URL)

	_, err = LoadRegistry(" ")
	assert.Error(t, err)
}

type fakeSQS struct {
	input *sqs.SendMessageInput
	err   error
}

func (f *fakeSQS) SendMessage(_ context.Context, in *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	return &sqs.SendMessageOutput{MessageId: aws.String("m-1")}, nil
}

func TestAWSSQSSenderAttributes(t *testing.T) {
	client := &fakeSQS{}
	s := &awsSQSSender{queueURL: "https://q", client: client, log: logger.NopLogger{}}

	require.NoError(t, s.Send(context.Background(), sampleEvent()))
	require.NotNil(t, client.input)
	assert.Equal(t, "https://q", aws.ToString(client.input.QueueUrl))
	assert.Equal(t, "user-7", aws.ToString(client.input.MessageAttributes["user_id"].StringValue))
	assert.Equal(t, "click", aws.ToString(client.input.MessageAttributes["activity"].StringValue))

	var decoded Event
	require.NoError(t, json.Unmarshal([]byte(aws.ToString(client.input.MessageBody)), &decoded))
	assert.Equal(t, "Chennai rain alert", decoded.Title)

	client.err = errors.New("throttled")
	assert.ErrorContains(t, s.Send(context.Background(), sampleEvent()), "throttled")
}

type fakeSNS struct {
	input *sns.PublishInput
}

func (f *fakeSNS) Publish(_ context.Context, in *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = in
	return &sns.PublishOutput{MessageId: aws.String("m-2")}, nil
}

func TestAWSSNSSenderSubject(t *testing.T) {
	client := &fakeSNS{}
	s := &awsSNSSender{topicARN: "arn:aws:sns:ap-south-1:1:history", client: client, log: logger.NopLogger{}}

	evt := sampleEvent()
	evt.UserID = ""
	require.NoError(t, s.Send(context.Background(), evt))
	assert.Equal(t, "click", aws.ToString(client.input.Subject))
	assert.NotContains(t, client.input.MessageAttributes, "user_id")
}

func TestHTTPPublisher(t *testing.T) {
	var (
		gotToken string
		gotBody  Event
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Token")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)
		if gotBody.Activity == "fail" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	cfg := sanitizePublisherConfig(PublisherConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPPublisherConfig{URL: srv.URL, Headers: map[string]string{"X-Token": "abc"}},
	})
	pub, err := DefaultRegistry().PublisherFor(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "hook", pub.ID())
	assert.Equal(t, TypeHTTP, pub.Type())

	require.NoError(t, pub.Publish(context.Background(), sampleEvent()))
	assert.Equal(t, "abc", gotToken)
	assert.Equal(t, "evt-1", gotBody.ID)

	evt := sampleEvent()
	evt.Activity = "fail"
	assert.ErrorContains(t, pub.Publish(context.Background(), evt), "status 502")
}

type recordingPublisher struct {
	id     string
	err    error
	events []Event
}

func (p *recordingPublisher) ID() string   { return p.id }
func (p *recordingPublisher) Type() string { return "fake" }

func (p *recordingPublisher) Publish(_ context.Context, evt Event) error {
	p.events = append(p.events, evt)
	return p.err
}

func TestRegistryWrapsActivityFilter(t *testing.T) {
	rec := &recordingPublisher{id: "rec"}
	reg := NewRegistry(map[string]Builder{
		"fake": func(context.Context, PublisherConfig, Logger) (Publisher, error) { return rec, nil },
	})

	pubs, err := BuildAll(context.Background(), reg, []PublisherConfig{{ID: "rec", Type: "fake", Activities: []string{"read_aloud"}}}, nil)
	require.NoError(t, err)
	require.Len(t, pubs, 1)

	require.NoError(t, pubs[0].Publish(context.Background(), sampleEvent()))
	assert.Empty(t, rec.events)

	evt := sampleEvent()
	evt.Activity = "read_aloud"
	require.NoError(t, pubs[0].Publish(context.Background(), evt))
	assert.Len(t, rec.events, 1)

	_, err = reg.PublisherFor(context.Background(), PublisherConfig{ID: "x", Type: "smtp"}, nil)
	assert.Error(t, err)
}

func TestFanoutContinuesPastFailures(t *testing.T) {
	bad := &recordingPublisher{id: "bad", err: errors.New("down")}
	good := &recordingPublisher{id: "good"}
	f := NewFanout([]Publisher{bad, good}, nil)

	err := f.Publish(context.Background(), sampleEvent())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad: down")
	assert.Len(t, good.events, 1)
	assert.Equal(t, 2, f.Len())

	assert.NoError(t, NewFanout(nil, nil).Publish(context.Background(), sampleEvent()))
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o600)
}
