package main

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"kingsign-backend/internal/events"
	"kingsign-backend/internal/queue"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

func jobMessage(t *testing.T, id string, msg queue.Message) sqstypes.Message {
	t.Helper()
	body, err := queue.EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return sqstypes.Message{
		MessageId:     aws.String("m-" + id),
		ReceiptHandle: aws.String("r-" + id),
		Body:          aws.String(string(body)),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}
}

func TestWorkerDeliversAndDeletesJob(t *testing.T) {
	client := &fakeSQS{}
	var delivered []events.Event
	handle := func(ctx context.Context, e events.Event) { delivered = append(delivered, e) }

	msg := jobMessage(t, "1", queue.Message{Type: "document.completed", DocumentID: "doc-1", RequestID: "req-1", Version: queue.MessageVersion})
	handleMessage(context.Background(), client, "queue", handle, msg)

	if len(delivered) != 1 || delivered[0].DocumentID != "doc-1" {
		t.Fatalf("unexpected deliveries %+v", delivered)
	}
	if len(client.deleted) != 1 || client.deleted[0] != "r-1" {
		t.Fatalf("expected delete of r-1, got %v", client.deleted)
	}
}

func TestWorkerKeepsJobWithoutHandler(t *testing.T) {
	client := &fakeSQS{}
	msg := jobMessage(t, "2", queue.Message{Type: "document.updated", DocumentID: "doc-2"})

	handleMessage(context.Background(), client, "queue", nil, msg)

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDropsInvalidJobs(t *testing.T) {
	client := &fakeSQS{}
	handle := func(ctx context.Context, e events.Event) { t.Fatalf("handler must not run for %+v", e) }

	bad := sqstypes.Message{MessageId: aws.String("m3"), ReceiptHandle: aws.String("r3"), Body: aws.String("{bad-json")}
	handleMessage(context.Background(), client, "queue", handle, bad)
	unknown := jobMessage(t, "4", queue.Message{Type: "document.deleted", DocumentID: "doc-4"})
	handleMessage(context.Background(), client, "queue", handle, unknown)

	if len(client.deleted) != 2 {
		t.Fatalf("expected both jobs deleted, got %v", client.deleted)
	}
}
