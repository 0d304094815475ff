package bot

import "fmt"

// User-facing texts. The product is single-locale; everything the reporter
// sees is Spanish.
const (
	msgCategoryMenuHeader = "Hola 👋, ¿qué tipo de problema quieres reportar?\n\n"
	msgCategoryMenuFooter = "\n\n_ℹ️ Solo atendemos reportes ciudadanos. Si tienes una emergencia, llama al 911._"
	msgInvalidCategory    = "Elige un número válido (0–7)"
	msgInvalidSubcategory = "Número inválido."
	msgAskPhoto           = "Envía una *foto* del problema."
	msgPhotoUploadFailed  = "Ocurrió un error al guardar la foto de tu reporte. Intenta enviar la imagen de nuevo."
	msgAskDescription     = "Describe brevemente *el problema*."
	msgAskLocation        = "Indica la *ubicación*: comparte tu ubicación o escribe la dirección completa _(Calle, número y colonia o población)_."
	msgAddressNotFound    = "No encontré esa dirección."
	msgGeocoderDown       = "No pude verificar esa dirección en este momento. Intenta de nuevo."
	msgOutOfRegion        = "Las coordenadas no están en Tulum."
	msgAskLandmark        = "Danos una *referencia visual* (al lado de X, frente a X, etc...)."
	msgAskSeverity        = "Del 1 al 5, ¿qué tan urgente es?\n1 = leve\n5 = serio"
	msgInvalidSeverity    = "Responde con 1–5"
	msgSubmitFailed       = "Hubo un error guardando tu reporte. Envía la urgencia de nuevo para reintentar."
)

func msgSubcategoryMenu(categoryName, menu string) string {
	return fmt.Sprintf("*%s*\nElige una opción:\n%s", categoryName, menu)
}

func msgReportReceived(categoryName, editURL string) string {
	text := fmt.Sprintf("✅ Gracias por tu reporte de *%s*.\n\n", categoryName)
	if editURL != "" {
		text += fmt.Sprintf("Lo revisaremos antes de publicarlo, mientras, puedes revisar su ubicación y ajustarla aquí _(24 h)_:\n%s", editURL)
	} else {
		text += "Lo revisaremos antes de publicarlo."
	}
	return text + "\n\n*Lo que reportas, importa.*"
}

func msgAdminNewReport(category, subcategory, panelURL string) string {
	text := fmt.Sprintf("🔔 Nuevo reporte pendiente en *Tulum Reporta*.\n\nCategoría: %s\nSubcategoría: %s", category, subcategory)
	if panelURL != "" {
		text += "\n\nRevísalo en el panel de reportes:\n" + panelURL
	}
	return text
}
