package beacon

import (
	"github.com/corvidlabs/beacon/internal/cache"
	"github.com/corvidlabs/beacon/internal/label"
	"github.com/corvidlabs/beacon/internal/message"
	"github.com/corvidlabs/beacon/internal/protocol"
	"github.com/corvidlabs/beacon/internal/record"
	"github.com/corvidlabs/beacon/internal/wire"
)

// InputKind discriminates the two things a driver can feed into Handle.
type InputKind int

const (
	InputKindTimeout InputKind = iota
	InputKindPacket
)

// Input is either an inbound datagram or a clock tick.
type Input struct {
	Kind    InputKind
	Packet  []byte
	Timeout Time
}

// PacketInput wraps an inbound datagram for Handle.
func PacketInput(buf []byte) Input { return Input{Kind: InputKindPacket, Packet: buf} }

// TimeoutInput wraps a clock tick for Handle.
func TimeoutInput(t Time) Input { return Input{Kind: InputKindTimeout, Timeout: t} }

// OutputKind discriminates what Handle produced.
type OutputKind int

const (
	OutputKindTimeout OutputKind = iota
	OutputKindPacket
	OutputKindRemote
)

// CastKind names how a packet output should be sent. The engine only ever
// multicasts (no unicast response mode, per the explicit Non-goal), so
// CastMulti is the only value today; the field exists so a driver's send
// path reads the same regardless.
type CastKind int

const CastMulti CastKind = iota

// Output is the single thing Handle returns per call: at most one queued
// packet, one newly-discovered remote service, or the deadline to wait
// until next.
type Output struct {
	Kind     OutputKind
	N        int // valid bytes written into the buf Handle was given
	Cast     CastKind
	Remote   RemoteService
	Deadline Time
}

// pendingResponse is a fully-built reply message awaiting serialization.
type pendingResponse struct {
	msg message.Message
}

// Server is the sans-IO mDNS engine: it owns no socket and spawns no
// goroutine. A driver feeds it packets and clock ticks via Handle and acts
// on what comes back.
type Server struct {
	services []ServiceInfo
	limits   message.Limits
	dictCap  int

	cache *cache.Cache

	phase        Phase
	clock        Time
	nextDeadline Time
	jitter       *jitterSource

	pendingResponses []pendingResponse
	pendingQuery     []label.Label
	pendingRemotes   []string

	metaLabel label.Label
}

// NewServer builds a Server advertising services. limits bounds every
// parsed/built message; cacheCapacity is R, the RemoteCache's entry bound;
// dictCapacity is D, the per-message label-compression dictionary bound.
// With zero services, the Server starts in QueryOnly and never announces.
func NewServer(services []ServiceInfo, limits message.Limits, cacheCapacity, dictCapacity int) (*Server, error) {
	metaLabel, err := label.New(metaServiceName, limits.MaxSegments)
	if err != nil {
		return nil, err
	}

	var seed uint64 = 1
	var phase Phase
	if len(services) > 0 {
		seed = seedFromLabel(services[0].FullInstanceName())
		phase = FirstAnnounce(0)
	} else {
		phase = QueryOnly()
	}

	return &Server{
		services:     append([]ServiceInfo(nil), services...),
		limits:       limits,
		dictCap:      dictCapacity,
		cache:        cache.New(cacheCapacity),
		phase:        phase,
		nextDeadline: 0,
		jitter:       newJitterSource(seed),
		metaLabel:    metaLabel,
	}, nil
}

// Query arms an immediate outbound query for targets, sent as a single
// message on the next Handle call. The target list is deduplicated.
func (s *Server) Query(targets []label.Label) {
	var out []label.Label
	for _, t := range targets {
		dup := false
		for _, seen := range out {
			if seen.Equal(t) {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, t)
		}
	}
	s.pendingQuery = out
}

// Handle advances the Server by one input and returns the single resulting
// Output, writing any outbound packet bytes into buf.
func (s *Server) Handle(in Input, buf []byte) Output {
	switch in.Kind {
	case InputKindPacket:
		s.handleInboundPacket(in.Packet)
	case InputKindTimeout:
		if in.Timeout > s.clock {
			s.clock = in.Timeout
		}
	}

	if msg, ok := s.dequeuePendingResponse(); ok {
		return s.emit(msg, buf)
	}
	if msg, ok := s.dequeuePendingQuery(); ok {
		return s.emit(msg, buf)
	}
	if msg, ok := s.dequeueScheduledAction(); ok {
		return s.emit(msg, buf)
	}
	if name, ok := s.dequeuePendingRemote(); ok {
		remote, _ := s.cache.Get(name)
		return Output{Kind: OutputKindRemote, Remote: remote}
	}

	return Output{Kind: OutputKindTimeout, Deadline: s.nextDeadline}
}

func (s *Server) emit(msg message.Message, buf []byte) Output {
	w := wire.NewWriter(buf)
	c := label.NewCompressor(s.dictCap)
	if err := message.Serialize(w, c, msg, s.limits); err != nil {
		// Emit-side BufferFull: abandon this packet outright rather than
		// send a truncated shell; the driver gets a Timeout instead.
		return Output{Kind: OutputKindTimeout, Deadline: s.nextDeadline}
	}
	return Output{Kind: OutputKindPacket, N: w.Position(), Cast: CastMulti}
}

func (s *Server) dequeuePendingResponse() (message.Message, bool) {
	if len(s.pendingResponses) == 0 {
		return message.Message{}, false
	}
	resp := s.pendingResponses[0]
	s.pendingResponses = s.pendingResponses[1:]
	return resp.msg, true
}

func (s *Server) dequeuePendingQuery() (message.Message, bool) {
	if len(s.pendingQuery) == 0 {
		return message.Message{}, false
	}
	questions := make([]message.Question, 0, len(s.pendingQuery))
	for _, name := range s.pendingQuery {
		questions = append(questions, message.Question{Name: name, Type: record.KindANY, Class: record.ClassIN})
	}
	s.pendingQuery = nil
	return message.Message{Header: message.Header{}, Questions: questions}, true
}

func (s *Server) dequeuePendingRemote() (string, bool) {
	if len(s.pendingRemotes) == 0 {
		return "", false
	}
	name := s.pendingRemotes[0]
	s.pendingRemotes = s.pendingRemotes[1:]
	return name, true
}

// dequeueScheduledAction advances the Phase state machine if the clock has
// reached nextDeadline, returning the announcement message to send, if
// any, per the cadence in SPEC_FULL.md §4.8.
func (s *Server) dequeueScheduledAction() (message.Message, bool) {
	if s.clock < s.nextDeadline {
		return message.Message{}, false
	}

	switch s.phase.Kind {
	case PhaseFirstAnnounce:
		return s.announceOneAndAdvance(PhaseSecondAnnounce, func() {
			s.nextDeadline = s.clock.Add(interAnnounceIntervalMs)
		})
	case PhaseSecondAnnounce:
		return s.announceOneAndAdvance(PhaseSteady, func() {
			s.nextDeadline = s.clock.Add(jitteredReannounceInterval(s.jitter))
		})
	case PhaseSteady:
		msg := s.combinedAnnouncement()
		s.nextDeadline = s.clock.Add(jitteredReannounceInterval(s.jitter))
		return msg, true
	case PhaseQueryOnly:
		return message.Message{}, false
	}
	return message.Message{}, false
}

// announceOneAndAdvance emits the full record set for services[phase.Index],
// advances the index, and transitions to nextKind (invoking onComplete)
// once every service has been announced once in this pass.
func (s *Server) announceOneAndAdvance(nextKind PhaseKind, onComplete func()) (message.Message, bool) {
	if len(s.services) == 0 {
		s.phase = Phase{Kind: nextKind}
		onComplete()
		return message.Message{}, false
	}

	i := s.phase.Index
	svc := s.services[i]
	msg := message.Message{
		Header:  message.Header{Flags: message.FlagQR | message.FlagAA},
		Answers: fullRecordSet(svc),
	}

	i++
	if i >= len(s.services) {
		s.phase = Phase{Kind: nextKind}
		onComplete()
	} else {
		s.phase = Phase{Kind: s.phase.Kind, Index: i}
	}
	return msg, true
}

func (s *Server) combinedAnnouncement() message.Message {
	var answers []record.Record
	for _, svc := range s.services {
		answers = append(answers, fullRecordSet(svc)...)
	}
	return message.Message{
		Header:  message.Header{Flags: message.FlagQR | message.FlagAA},
		Answers: answers,
	}
}

func (s *Server) handleInboundPacket(buf []byte) {
	r := wire.NewReader(buf)
	msg, err := message.Parse(r, s.limits)
	if err != nil {
		// All inbound-parse errors are silently dropped; mDNS is lossy by
		// design and the Server cannot get wedged by malformed input.
		return
	}

	if msg.Header.IsResponse() {
		// RFC 6762 §18.11: responses with a non-zero RCODE (and any other
		// malformed response header) are silently ignored, never ingested.
		if err := protocol.ValidateResponse(msg.Header.Flags); err != nil {
			return
		}
		s.ingestRecords(msg.Answers)
		s.ingestRecords(msg.Additionals)
		return
	}

	s.answerQuestions(msg.Questions)
}

func (s *Server) answerQuestions(questions []message.Question) {
	var merged answerSet
	for _, q := range questions {
		ans := matchQuestion(s.services, s.metaLabel, q)
		merged.addAnswer(ans.answers...)
		merged.addAdditional(ans.additionals...)
	}
	if len(merged.answers) == 0 {
		return
	}

	msg := message.Message{
		Header:      message.Header{Flags: message.FlagQR | message.FlagAA},
		Answers:     message.DedupAnswers(merged.answers),
		Additionals: message.DedupAnswers(merged.additionals),
	}
	s.pendingResponses = append(s.pendingResponses, pendingResponse{msg: msg})
}

// labelTail drops the leading segment of l, turning an instance name like
// "My Printer._ipp._tcp.local" into the bare service type
// "_ipp._tcp.local".
func labelTail(l label.Label) label.Label {
	segs := l.Segments()
	if len(segs) <= 1 {
		return label.FromSegments(nil)
	}
	return label.FromSegments(segs[1:])
}

func (s *Server) ingestRecords(recs []record.Record) {
	for _, rec := range recs {
		switch r := rec.(type) {
		case *record.PTR:
			instanceName := r.Target.String()
			serviceType := r.Hdr.Name.String()
			if s.cache.IngestPTR(serviceType, instanceName) {
				s.pendingRemotes = append(s.pendingRemotes, instanceName)
			}
		case *record.SRV:
			instanceName := r.Hdr.Name.String()
			serviceType := labelTail(r.Hdr.Name).String()
			if s.cache.IngestSRV(instanceName, serviceType, r.Target.String(), r.Port) {
				s.pendingRemotes = append(s.pendingRemotes, instanceName)
			}
		case *record.TXT:
			instanceName := r.Hdr.Name.String()
			serviceType := labelTail(r.Hdr.Name).String()
			if s.cache.IngestTXT(instanceName, serviceType, r.Entries) {
				s.pendingRemotes = append(s.pendingRemotes, instanceName)
			}
		case *record.A:
			hostName := r.Hdr.Name.String()
			s.pendingRemotes = append(s.pendingRemotes, s.cache.IngestA(hostName, r.Addr)...)
		}
	}
}
