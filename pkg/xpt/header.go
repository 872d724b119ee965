package xpt

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Everything in a transport file is laid out in 80-byte card images.
const cardLen = 80

// Header card signatures, bytes 20..41 of a card. Names are space-padded
// to eight characters inside the 21-byte field.
const (
	sigLibrary     = "LIBRARY HEADER RECORD"
	sigMember      = "MEMBER  HEADER RECORD"
	sigDescriptor  = "DSCRPTR HEADER RECORD"
	sigNamestr     = "NAMESTR HEADER RECORD"
	sigObservation = "OBS     HEADER RECORD"
)

// headerCard is one parsed "HEADER RECORD*******...!!!!!!!" card: the
// 21-byte signature plus six 5-byte ASCII numeric fields.
type headerCard struct {
	sig string
	num [6]string
}

// parseHeaderCard splits an 80-byte card into its signature and numeric
// fields. ok is false when the fixed marker text is absent, meaning the
// card is not a header card at all.
func parseHeaderCard(card []byte) (h headerCard, ok bool) {
	if string(card[0:13]) != "HEADER RECORD" ||
		string(card[13:20]) != "*******" ||
		string(card[41:48]) != "!!!!!!!" {
		return headerCard{}, false
	}
	h.sig = string(card[20:41])
	for i := range h.num {
		off := 48 + i*5
		h.num[i] = string(card[off : off+5])
	}
	return h, true
}

// numField parses the i-th numeric field of the card as a decimal integer.
func (h headerCard) numField(i int) (int, error) {
	s := strings.TrimSpace(h.num[i])
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("header numeric field %d %q: %w", i+1, h.num[i], err)
	}
	return n, nil
}

// trimField extracts a character field, dropping the space padding SAS
// writes and any NUL bytes other producers leave behind.
func trimField(b []byte) string {
	return string(bytes.Trim(b, " \t\r\n\v\f\x00"))
}

// Transport timestamps look like 16FEB11:14:42:08. Two-digit years follow
// the usual pivot: 69..99 are 19xx, 00..68 are 20xx.
const timestampLayout = "02Jan06:15:04:05"

// parseTimestamp decodes a 16-byte datetime field. Unparsable values come
// back as the zero time; header timestamps are advisory and never fail a
// decode.
func parseTimestamp(b []byte) time.Time {
	t, err := time.Parse(timestampLayout, strings.TrimSpace(string(b)))
	if err != nil {
		return time.Time{}
	}
	return t
}

// Library is the file-level metadata from the prelude records that follow
// the LIBRARY header card.
type Library struct {
	SASVersion string
	OS         string
	Created    time.Time
	Modified   time.Time
}

// Member is the dataset-level metadata from the records that follow the
// DSCRPTR header card.
type Member struct {
	Name       string
	Label      string
	Type       string
	SASVersion string
	OS         string
	Created    time.Time
	Modified   time.Time
}
