package service

import (
	"strings"
	"time"

	"djnic/internal/core/events"
	pstrings "djnic/internal/platform/strings"
	tgdom "djnic/internal/services/api/telegram/domain"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// es formats counts the way Spanish readers expect them
var es = message.NewPrinter(language.Spanish)

const (
	replyUnknown = "Comando no reconocido.\n\nUsa /help para ver los comandos disponibles."

	replyLinkUsage = "Debes proporcionar el código de vinculación.\n\n" +
		"Uso: <code>/link TU_CODIGO</code>\n\n" +
		"Obtén tu código desde tu perfil en la web."

	replyInvalidToken = "Código inválido o expirado.\n\n" +
		"Por favor, genera un nuevo código desde tu perfil en la web."

	replyNotLinked = "Tu Telegram no está vinculado a ninguna cuenta."

	replyStatusNotLinked = "ℹ<b>Estado:</b> No vinculado\n\n" +
		"Tu Telegram no está vinculado a ninguna cuenta.\n" +
		"Usa /link para vincular."

	replySubsNotLinked = "Tu Telegram no está vinculado a ninguna cuenta.\n\n" +
		"Usa /link para vincular primero."
)

// StatusTimeLayout renders the last notification time in /status
const StatusTimeLayout = "02/01/2006 15:04"

var deliveryModes = map[string]string{
	"immediate": "Inmediato",
	"daily":     "Mi resumen diario",
	"weekly":    "Mi resumen semanal",
}

func replyWelcome(bot, site string) string {
	return "¡Bienvenido a <b>" + pstrings.EscapeHTML(bot) + "</b>!\n\n" +
		"Este bot te enviará notificaciones sobre cambios en dominios " +
		"y registrantes que sigas en " + site + ".\n\n" +
		"Para recibir notificaciones, vincula tu cuenta:\n\n" +
		"1. Ingresa a tu perfil en " + site + "\n" +
		"2. Ve a la sección de notificaciones\n" +
		"3. Haz clic en \"Vincular Telegram\"\n" +
		"4. Copia el código y envíalo aquí con:\n" +
		"   <code>/link TU_CODIGO</code>\n\n" +
		"Comandos disponibles:\n" +
		"/link &lt;código&gt; - Vincular tu cuenta\n" +
		"/status - Ver estado\n" +
		"/help - Ver ayuda"
}

func replyLinkedWelcome(firstName, user, site string) string {
	return "¡Hola <b>" + pstrings.EscapeHTML(firstName) + "</b>\n\n" +
		"Tu cuenta de Telegram ya está vinculada a <b>" + pstrings.EscapeHTML(user) + "</b> " +
		"en " + site + ".\n\n" +
		"Recibirás notificaciones aquí cuando haya cambios en tus suscripciones.\n\n" +
		"Comandos disponibles:\n" +
		"/suscripciones - Ver tus suscripciones\n" +
		"/status - Ver estado de tu cuenta\n" +
		"/unlink - Desvincular tu cuenta\n" +
		"/help - Ver ayuda"
}

func replyLinked(user string) string {
	return "Cuenta vinculada exitosamente!\n\n" +
		"Tu Telegram ahora está conectado a <b>" + pstrings.EscapeHTML(user) + "</b>.\n\n" +
		"Recibirás notificaciones aquí cuando haya cambios en tus suscripciones."
}

func replyLinkedElsewhere(other string) string {
	return "⚠️ Este Telegram ya está vinculado a otra cuenta (" + pstrings.EscapeHTML(other) + ").\n\n" +
		"Usa /unlink primero si quieres vincular a otra cuenta."
}

func replyUnlinked(user string) string {
	return "Tu Telegram ha sido desvinculado de <b>" + pstrings.EscapeHTML(user) + "</b>.\n\n" +
		"Ya no recibirás notificaciones. Usa /link para vincular nuevamente."
}

func replyStatus(ch tgdom.Channel, subs int, loc *time.Location) string {
	status := "Pausado"
	if ch.IsActive {
		status = "Activo"
	}
	verified := "Pendiente"
	if ch.IsVerified {
		verified = "Verificado"
	}
	last := "Nunca"
	if ch.LastSentAt != nil {
		last = ch.LastSentAt.In(loc).Format(StatusTimeLayout)
	}

	var b strings.Builder
	b.WriteString("<b>Estado de tu cuenta</b>\n\n")
	b.WriteString("Usuario: <b>" + pstrings.EscapeHTML(ch.UserName) + "</b>\n")
	b.WriteString("Estado: " + status + "\n")
	b.WriteString("Verificado: " + verified + "\n")
	b.WriteString("Última notificación: " + last + "\n")
	if ch.ErrorCount > 0 {
		b.WriteString(es.Sprintf("Errores recientes: %d\n", ch.ErrorCount))
	}
	b.WriteString(es.Sprintf("\nSuscripciones activas: %d", subs))
	return b.String()
}

func replyNoSubscriptions(site string) string {
	return "No tienes suscripciones activas.\n\n" +
		"Visita " + site + " para seguir dominios o registrantes."
}

func replySubscriptions(subs []tgdom.Subscription) string {
	parts := []string{"<b>Tus suscripciones activas:</b>\n"}
	for _, group := range []struct {
		kind  events.SubjectKind
		title string
	}{
		{events.SubjectDomain, "\n<b>Dominios:</b>"},
		{events.SubjectRegistrant, "\n<b>Registrantes:</b>"},
	} {
		header := false
		for _, s := range subs {
			if s.SubjectKind != string(group.kind) {
				continue
			}
			if !header {
				parts = append(parts, group.title)
				header = true
			}
			kinds := "todos"
			if len(s.EventTypes) > 0 {
				kinds = strings.Join(s.EventTypes, ", ")
			}
			mode, ok := deliveryModes[s.DeliveryMode]
			if !ok {
				mode = s.DeliveryMode
			}
			parts = append(parts, "• <b>"+pstrings.EscapeHTML(s.Identifier)+"</b>\n"+
				"  Eventos: "+kinds+"\n"+
				"  Entrega: "+mode)
		}
	}
	parts = append(parts, es.Sprintf("\n<b>Total:</b> %d suscripciones", len(subs)))
	return strings.Join(parts, "\n")
}

func replyHelp(site string) string {
	return "<b>Comandos disponibles</b>\n\n" +
		"/start - Iniciar el bot\n" +
		"/link &lt;código&gt; - Vincular tu cuenta\n" +
		"/unlink - Desvincular tu cuenta\n" +
		"/status - Ver estado de vinculación\n" +
		"/suscripciones - Ver tus suscripciones activas\n" +
		"/help - Ver esta ayuda\n\n" +
		"Para gestionar tus suscripciones, visita tu perfil en " + site + "."
}
