package mail

import (
	"strings"
	"testing"

	"github.com/boutique-cartes/backend/internal/orders"
)

func TestOrderConfirmation(t *testing.T) {
	items := []orders.Item{
		{Titre: "Carte aquarelle", Prix: 10.5, Quantite: 2},
		{Titre: "Carte brodée", Prix: 4, Quantite: 1},
	}
	subject, html, err := OrderConfirmation(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subject == "" {
		t.Error("subject should not be empty")
	}
	for _, want := range []string{"Carte aquarelle", "Carte brodée", "<td>2</td>", "10.50", "25.00"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q:\n%s", want, html)
		}
	}
}

func TestSpecialRequestBody(t *testing.T) {
	subject, text := SpecialRequestBody([]string{"Carte dorée", "Carte sur mesure"})
	if subject == "" {
		t.Error("subject should not be empty")
	}
	if !strings.Contains(text, "Carte dorée") || !strings.Contains(text, "Carte sur mesure") {
		t.Errorf("text missing products:\n%s", text)
	}
}
