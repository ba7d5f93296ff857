package mail

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/boutique-cartes/backend/internal/orders"
)

const orderConfirmationSubject = "Confirmation de votre commande"

var orderConfirmationTmpl = template.Must(template.New("confirmation").Parse(`<p>Bonjour,</p>
<p>Merci pour votre commande ! En voici le récapitulatif :</p>
<table border="1" cellpadding="6" cellspacing="0">
  <tr><th>Produit</th><th>Quantité</th><th>Prix</th></tr>
{{- range .Items}}
  <tr><td>{{.Titre}}</td><td>{{.Quantite}}</td><td>{{printf "%.2f" .Prix}} €</td></tr>
{{- end}}
  <tr><td colspan="2"><strong>Total</strong></td><td><strong>{{printf "%.2f" .Total}} €</strong></td></tr>
</table>
<p>À très bientôt,<br>La boutique</p>`))

// OrderConfirmation renders the confirmation body for a recorded order.
func OrderConfirmation(items []orders.Item) (subject, html string, err error) {
	var total float64
	for _, it := range items {
		total += it.Prix * float64(it.Quantite)
	}
	var b strings.Builder
	err = orderConfirmationTmpl.Execute(&b, struct {
		Items []orders.Item
		Total float64
	}{items, total})
	if err != nil {
		return "", "", err
	}
	return orderConfirmationSubject, b.String(), nil
}

const specialRequestSubject = "Votre demande spéciale"

// SpecialRequestBody summarizes the requested products in plain text.
func SpecialRequestBody(products []string) (subject, text string) {
	var b strings.Builder
	b.WriteString("Bonjour,\n\nNous avons bien reçu votre demande concernant :\n")
	for _, p := range products {
		fmt.Fprintf(&b, "  - %s\n", p)
	}
	b.WriteString("\nNous revenons vers vous au plus vite.\n\nLa boutique\n")
	return specialRequestSubject, b.String()
}
