package beacon

import (
	"github.com/corvidlabs/beacon/internal/label"
	"github.com/corvidlabs/beacon/internal/message"
	"github.com/corvidlabs/beacon/internal/record"
)

// metaServiceName is the well-known DNS-SD service-enumeration name per
// RFC 6763 §9.
const metaServiceName = "_services._dns-sd._udp.local"

func ptrRecord(svc ServiceInfo) record.Record {
	return &record.PTR{
		Hdr:    record.Header{Name: svc.ServiceName, Class: record.ClassIN, TTL: svc.serviceRecordTTL()},
		Target: svc.FullInstanceName(),
	}
}

func srvRecord(svc ServiceInfo) record.Record {
	return &record.SRV{
		Hdr:    record.Header{Name: svc.FullInstanceName(), Class: record.ClassIN, TTL: svc.serviceRecordTTL()},
		Port:   svc.Port,
		Target: svc.HostName,
	}
}

func txtRecord(svc ServiceInfo) record.Record {
	return &record.TXT{
		Hdr:     record.Header{Name: svc.FullInstanceName(), Class: record.ClassIN, TTL: svc.serviceRecordTTL()},
		Entries: svc.TXT,
	}
}

func aRecord(svc ServiceInfo) record.Record {
	return &record.A{
		Hdr:  record.Header{Name: svc.HostName, Class: record.ClassIN, TTL: svc.hostRecordTTL()},
		Addr: svc.IPv4,
	}
}

// fullRecordSet returns the complete PTR+SRV+TXT+A tuple for svc, used as
// the answer section of self-announcements. ANY questions are answered per
// name by matchQuestion, not with this set.
func fullRecordSet(svc ServiceInfo) []record.Record {
	return []record.Record{ptrRecord(svc), srvRecord(svc), txtRecord(svc), aRecord(svc)}
}

// answerSet is the result of matching one question against the configured
// services: answers go in the answer section, additionals in the
// additional section (RFC 6762 §12's "additional record" convention, which
// saves the asker a round trip for the records it's almost certainly about
// to want next).
type answerSet struct {
	answers     []record.Record
	additionals []record.Record
}

func (a *answerSet) addAnswer(recs ...record.Record) {
	a.answers = append(a.answers, recs...)
}

func (a *answerSet) addAdditional(recs ...record.Record) {
	a.additionals = append(a.additionals, recs...)
}

// matchQuestion synthesizes the answers (and additionals) a single question
// produces against the configured services, per the question-to-answer
// table in SPEC_FULL.md §4.6.
func matchQuestion(services []ServiceInfo, metaLabel label.Label, q message.Question) answerSet {
	var out answerSet

	isANY := q.Type == record.KindANY
	wantPTR := q.Type == record.KindPTR || isANY
	wantSRV := q.Type == record.KindSRV || isANY
	wantTXT := q.Type == record.KindTXT || isANY
	wantA := q.Type == record.KindA || isANY

	if wantPTR && q.Name.Equal(metaLabel) {
		for _, distinct := range distinctServiceNames(services) {
			out.addAnswer(&record.PTR{
				Hdr:    record.Header{Name: metaLabel, Class: record.ClassIN, TTL: DefaultServiceTTL},
				Target: distinct,
			})
		}
	}

	for _, svc := range services {
		if wantPTR && q.Name.Equal(svc.ServiceName) {
			out.addAnswer(ptrRecord(svc))
			out.addAdditional(srvRecord(svc), txtRecord(svc), aRecord(svc))
		}
		if wantSRV && q.Name.Equal(svc.FullInstanceName()) {
			out.addAnswer(srvRecord(svc))
			out.addAdditional(aRecord(svc))
		}
		if wantTXT && q.Name.Equal(svc.FullInstanceName()) {
			out.addAnswer(txtRecord(svc))
		}
		if wantA && q.Name.Equal(svc.HostName) {
			out.addAnswer(aRecord(svc))
		}
	}

	return out
}

// distinctServiceNames returns one label per distinct ServiceName among
// services, for the §9 meta-query response.
func distinctServiceNames(services []ServiceInfo) []label.Label {
	var out []label.Label
	for _, svc := range services {
		dup := false
		for _, seen := range out {
			if seen.Equal(svc.ServiceName) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, svc.ServiceName)
		}
	}
	return out
}
