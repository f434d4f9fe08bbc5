package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dukanapp/dukan/internal/intake"
	"github.com/dukanapp/dukan/internal/telegram"
)

type stubCatalog struct {
	products []intake.CatalogProduct
}

func (s *stubCatalog) SearchProducts(_ context.Context, query string) ([]intake.CatalogProduct, error) {
	var hits []intake.CatalogProduct
	for _, product := range s.products {
		if strings.Contains(intake.Fold(product.Name), intake.Fold(query)) {
			hits = append(hits, product)
		}
	}
	return hits, nil
}

func (s *stubCatalog) ProductByBarcode(context.Context, string) (*intake.CatalogProduct, error) {
	return nil, nil
}

type stubScopes struct {
	scope intake.AccessScope
	err   error
}

func (s *stubScopes) ScopeBySender(context.Context, int64) (intake.AccessScope, error) {
	return s.scope, s.err
}

type stubSender struct {
	chatID int64
	text   string
	calls  int
	err    error
}

func (s *stubSender) SendReply(_ context.Context, chatID int64, text string) error {
	s.calls++
	s.chatID = chatID
	s.text = text
	return s.err
}

func testEngine() *intake.Engine {
	catalog := &stubCatalog{products: []intake.CatalogProduct{{
		ID:   1,
		Name: "عطر ليلي",
		Variants: []intake.CatalogVariant{
			{ProductID: 1, VariantID: 2, UnitPrice: 20000, OnHandQty: 8},
		},
	}}}
	return intake.NewEngine(catalog, nil, nil, nil, intake.EngineConfig{DeliveryFee: 5000}, nil)
}

func TestHandleMessageRepliesInChat(t *testing.T) {
	sender := &stubSender{}
	svc := NewIntakeService(testEngine(), &stubScopes{scope: intake.FullAccess()}, sender, nil)

	err := svc.HandleMessage(context.Background(), telegram.InboundText{
		MessageRef: "5:9",
		ChatID:     5,
		SenderID:   700,
		Text:       "07701234567\nعطر ليلي",
	})
	if err != nil {
		t.Fatalf("HandleMessage: %v", err)
	}
	if sender.calls != 1 || sender.chatID != 5 {
		t.Fatalf("sender calls = %d chat = %d", sender.calls, sender.chatID)
	}
	if !strings.HasPrefix(sender.text, "✅") {
		t.Errorf("reply = %q", sender.text)
	}
}

func TestHandleMessageScopeLookupFailure(t *testing.T) {
	sender := &stubSender{}
	svc := NewIntakeService(testEngine(), &stubScopes{err: errors.New("db down")}, sender, nil)

	err := svc.HandleMessage(context.Background(), telegram.InboundText{ChatID: 5, Text: "عطر"})
	if err == nil {
		t.Fatal("expected error")
	}
	if sender.calls != 0 {
		t.Error("replied despite scope failure")
	}
}

func TestHandleMessageSenderFailureSwallowed(t *testing.T) {
	sender := &stubSender{err: errors.New("telegram 502")}
	svc := NewIntakeService(testEngine(), &stubScopes{scope: intake.FullAccess()}, sender, nil)

	err := svc.HandleMessage(context.Background(), telegram.InboundText{ChatID: 5, Text: "07701234567\nعطر ليلي"})
	if err != nil {
		t.Fatalf("reply failure escaped: %v", err)
	}
	if sender.calls != 1 {
		t.Error("reply not attempted")
	}
}
