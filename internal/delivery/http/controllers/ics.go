package controllers

import (
	"strings"
	"time"

	"techconnect/internal/domain"
)

// Events have no explicit end time, so calendar entries default to two hours.
const icsDefaultDuration = 2 * time.Hour

const icsTimeLayout = "20060102T150405Z"

// buildICS renders a single-event iCalendar document per RFC 5545.
// Lines end with CRLF and text values are escaped.
func buildICS(event *domain.Event) string {
	start := event.Date.UTC()
	end := start.Add(icsDefaultDuration)

	var b strings.Builder
	writeICSLine(&b, "BEGIN:VCALENDAR")
	writeICSLine(&b, "VERSION:2.0")
	writeICSLine(&b, "PRODID:-//TechConnect//Events//EN")
	writeICSLine(&b, "CALSCALE:GREGORIAN")
	writeICSLine(&b, "METHOD:PUBLISH")
	writeICSLine(&b, "BEGIN:VEVENT")
	writeICSLine(&b, "UID:"+event.ID+"@techconnect")
	writeICSLine(&b, "DTSTAMP:"+time.Now().UTC().Format(icsTimeLayout))
	writeICSLine(&b, "DTSTART:"+start.Format(icsTimeLayout))
	writeICSLine(&b, "DTEND:"+end.Format(icsTimeLayout))
	writeICSLine(&b, "SUMMARY:"+escapeICSText(event.Title))
	if event.Description != "" {
		writeICSLine(&b, "DESCRIPTION:"+escapeICSText(event.Description))
	}
	if event.Location != "" {
		writeICSLine(&b, "LOCATION:"+escapeICSText(event.Location))
	}
	writeICSLine(&b, "END:VEVENT")
	writeICSLine(&b, "END:VCALENDAR")
	return b.String()
}

// writeICSLine appends a content line, folding at 75 octets per the RFC.
func writeICSLine(b *strings.Builder, line string) {
	const limit = 75
	for len(line) > limit {
		cut := limit
		// Do not split a UTF-8 sequence.
		for cut > 0 && line[cut]&0xC0 == 0x80 {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n")
		line = " " + line[cut:]
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}

var icsEscaper = strings.NewReplacer(
	"\\", "\\\\",
	";", "\\;",
	",", "\\,",
	"\r\n", "\\n",
	"\n", "\\n",
)

func escapeICSText(s string) string {
	return icsEscaper.Replace(s)
}
