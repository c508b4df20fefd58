package jobs

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/socialstack-core/storefront-api/internal/services"
)

func TestPubSubCatalogPublisherPublishesMessage(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	client, err := pubsub.NewClient(ctx, "test-project",
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	)
	if err != nil {
		t.Fatalf("pubsub.NewClient: %v", err)
	}
	defer func() {
		_ = client.Close()
	}()

	topic, err := client.CreateTopic(ctx, "catalog-events")
	if err != nil {
		t.Fatalf("CreateTopic: %v", err)
	}

	publisher, err := NewPubSubCatalogPublisher(topic)
	if err != nil {
		t.Fatalf("NewPubSubCatalogPublisher: %v", err)
	}

	event := services.CatalogEvent{
		Kind:       services.CatalogEventKindCategory,
		Action:     services.CatalogEventActionUpdated,
		EntityID:   "42",
		ActorID:    "user-7",
		OccurredAt: time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	}

	if _, err := publisher.PublishCatalogEvent(ctx, event); err != nil {
		t.Fatalf("PublishCatalogEvent: %v", err)
	}

	messages := srv.Messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}

	var payload services.CatalogEvent
	if err := json.Unmarshal(messages[0].Data, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if payload.Kind != event.Kind || payload.EntityID != event.EntityID {
		t.Fatalf("unexpected payload %#v", payload)
	}
	if attr := messages[0].Attributes["action"]; attr != "updated" {
		t.Fatalf("expected action attribute, got %q", attr)
	}
	if attr := messages[0].Attributes["entityId"]; attr != "42" {
		t.Fatalf("expected entityId attribute, got %q", attr)
	}
}

func TestNewPubSubCatalogPublisherRequiresTopic(t *testing.T) {
	if _, err := NewPubSubCatalogPublisher(nil); err == nil {
		t.Fatal("expected error for nil topic")
	}
}
