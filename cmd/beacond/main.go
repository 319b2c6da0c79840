// beacond is an example driver binary wiring the sans-IO beacon.Server to a
// real UDP multicast socket. It advertises one service and logs whatever the
// engine discovers on the network.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/netip"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/corvidlabs/beacon"
	"github.com/corvidlabs/beacon/internal/message"
	"github.com/corvidlabs/beacon/internal/security"
	"github.com/corvidlabs/beacon/transport"
)

// Storm-protection defaults: at most 100 packets/second from a single
// source, then a minute of silence from it, bounded to 10,000 tracked
// sources. Guards against the kind of malfunctioning-device multicast
// storm RFC 6762 implementations see in the wild.
const (
	rateLimitThreshold  = 100
	rateLimitCooldown   = 60 * time.Second
	rateLimitMaxEntries = 10_000
)

// localIPv4 picks the first non-loopback IPv4 address on any up interface,
// for advertising the A record of this host.
func localIPv4() ([4]byte, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return [4]byte{}, err
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		v4 := ipNet.IP.To4()
		if v4 == nil {
			continue
		}
		return [4]byte{v4[0], v4[1], v4[2], v4[3]}, nil
	}
	return [4]byte{}, fmt.Errorf("no non-loopback IPv4 address found")
}

func main() {
	service := flag.String("service", "_http._tcp.local", "service type to advertise")
	instance := flag.String("instance", "", "instance name to advertise (advertising is skipped if empty)")
	host := flag.String("host", "", "host name to advertise, e.g. mybox.local")
	port := flag.Uint("port", 8080, "port to advertise")
	logLevel := flag.String("log-level", "info", "log level: debug/info/warn/error")
	flag.Parse()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch *logLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		log.Fatal().Str("level", *logLevel).Msg("invalid log level")
	}

	if err := run(*service, *instance, *host, uint16(*port)); err != nil {
		log.Fatal().Err(err).Msg("beacond exited with an error")
	}
}

const maxSegments = 16

func run(serviceType, instanceName, hostName string, port uint16) error {
	var services []beacon.ServiceInfo
	if instanceName != "" {
		addr, err := localIPv4()
		if err != nil {
			return err
		}
		svc, err := beacon.NewServiceInfo(serviceType, instanceName, hostName, addr, port, maxSegments)
		if err != nil {
			return err
		}
		services = append(services, svc)
		log.Info().Str("service", serviceType).Str("instance", instanceName).
			Str("host", hostName).Uint16("port", port).Msg("advertising service")
	} else {
		log.Info().Msg("no instance configured; running in query-only mode")
	}

	limits := message.Limits{MaxQuestions: 32, MaxAnswers: 64, MaxSegments: maxSegments, MaxEntries: 32}
	server, err := beacon.NewServer(services, limits, 256, 32)
	if err != nil {
		return err
	}

	sock, err := transport.NewMulticastSocket()
	if err != nil {
		return err
	}
	defer func() { _ = sock.Close() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return driveLoop(ctx, server, sock)
}

// driveLoop is the pull loop: a single goroutine owns the Server and calls
// Handle for every inbound packet (relayed from the receive goroutine over
// inbound) and every clock tick. The Server itself is never touched
// concurrently, since it is not safe for that.
func driveLoop(ctx context.Context, server *beacon.Server, sock *transport.MulticastSocket) error {
	epoch := time.Now()
	now := func() beacon.Time { return beacon.Time(time.Since(epoch).Milliseconds()) }

	dest, err := netip.ParseAddrPort(transport.MulticastAddr)
	if err != nil {
		return err
	}

	inbound := make(chan []byte, 16)
	go receiveLoop(ctx, sock, inbound)

	out := make([]byte, 9000)
	timer := time.NewTimer(0)
	defer timer.Stop()

	armTimer := func(deadline beacon.Time) {
		wait := now().MillisUntil(deadline)
		if wait <= 0 {
			wait = 1
		}
		timer.Reset(time.Duration(wait) * time.Millisecond)
	}

	// pump drains every queued Output from one input (Handle returns at
	// most one thing per call; a packet or query can leave more behind)
	// until Handle reports nothing left to do, then arms the timer from
	// that final Timeout's Deadline.
	pump := func(in beacon.Input) {
		for {
			output := server.Handle(in, out)
			in = beacon.TimeoutInput(now())
			if output.Kind == beacon.OutputKindTimeout {
				armTimer(output.Deadline)
				return
			}
			handleOutput(ctx, output, sock, dest, out)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case pkt := <-inbound:
			pump(beacon.PacketInput(pkt))
		case <-timer.C:
			pump(beacon.TimeoutInput(now()))
		}
	}
}

func handleOutput(ctx context.Context, output beacon.Output, sock *transport.MulticastSocket, dest netip.AddrPort, buf []byte) {
	switch output.Kind {
	case beacon.OutputKindPacket:
		if err := sock.Send(ctx, buf[:output.N], dest); err != nil {
			log.Warn().Err(err).Msg("send failed")
		}
	case beacon.OutputKindRemote:
		log.Info().
			Str("instance", output.Remote.InstanceName).
			Str("host", output.Remote.HostName).
			Uint16("port", output.Remote.Port).
			Msg("discovered remote service")
	case beacon.OutputKindTimeout:
	}
}

// upMulticastInterfaces returns the up, multicast-capable interfaces —
// the same set transport.NewMulticastSocket joins the mDNS group on.
func upMulticastInterfaces() []net.Interface {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil
	}
	var up []net.Interface
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp != 0 && iface.Flags&net.FlagMulticast != 0 {
			up = append(up, iface)
		}
	}
	return up
}

// receiveLoop only owns the socket; it never touches the Server, keeping
// every Handle call on the single driveLoop goroutine. Packets from a
// source outside mDNS's link-local scope, or exceeding the rate limit, are
// dropped before they ever reach the Server.
func receiveLoop(ctx context.Context, sock *transport.MulticastSocket, inbound chan<- []byte) {
	limiter := security.NewRateLimiter(rateLimitThreshold, rateLimitCooldown, rateLimitMaxEntries)
	filter := security.NewSourceFilter(upMulticastInterfaces())
	buf := make([]byte, 9000)
	for {
		n, src, err := sock.Receive(ctx, buf)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn().Err(err).Msg("receive failed")
			continue
		}
		if src.IsValid() {
			if !filter.IsValid(net.IP(src.Addr().AsSlice())) {
				log.Debug().Str("source", src.Addr().String()).Msg("dropping packet: source outside link-local scope")
				continue
			}
			if !limiter.Allow(src.Addr().String()) {
				log.Debug().Str("source", src.Addr().String()).Msg("dropping packet: rate limit exceeded")
				continue
			}
		}
		pkt := make([]byte, n)
		copy(pkt, buf[:n])
		select {
		case inbound <- pkt:
		case <-ctx.Done():
			return
		}
	}
}
