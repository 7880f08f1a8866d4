package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	pb "clobengine/api/enginepb"
	"clobengine/api/grpcserver"
	"clobengine/broadcaster"
	"clobengine/config"
	"clobengine/engine"
	"clobengine/ingress"
	"clobengine/journal"
	"clobengine/outbox"
	"clobengine/sequence"
	"clobengine/snapshot"
)

func main() {
	cfgPath := flag.String("config", "", "path to engined YAML config; omitted uses config.Default()")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		loaded, err := config.Load(*cfgPath)
		if err != nil {
			log.Fatalf("engined: load config: %v", err)
		}
		cfg = loaded
	}

	hub := engine.NewEventHub()
	var sink engine.EventSink = hub
	var box *outbox.Outbox
	outboxSeq := sequence.New(0)

	if cfg.Outbox.Dir != "" {
		var err error
		box, err = outbox.Open(cfg.Outbox.Dir)
		if err != nil {
			log.Fatalf("engined: open outbox: %v", err)
		}
		defer box.Close()
		sink = engine.NewCompositeSink(hub, engine.NewOutboxSink(box, outboxSeq))
	}

	eng := engine.New(cfg, sink)

	cmdSeq := sequence.New(0)
	for _, inst := range cfg.Instruments {
		jcfg := journal.Config{Dir: "", SegmentSize: cfg.Journal.SegmentSize, SegmentDuration: cfg.Journal.SegmentDuration}
		if cfg.Journal.Dir != "" {
			jcfg.Dir = cfg.Journal.Dir + "/" + inst.Id
		}

		lastSeq, err := eng.ReplayInstrument(inst.Id, jcfg)
		if err != nil {
			log.Fatalf("engined: replay %s: %v", inst.Id, err)
		}
		if lastSeq > cmdSeq.Current() {
			cmdSeq.Reset(lastSeq)
		}
		log.Printf("engined: %s replayed to seq %d", inst.Id, lastSeq)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go eng.Run(ctx)

	snapReader := snapshot.NewReader()
	startEpochReclaim(ctx, eng, cfg, snapReader)
	startSnapshotJob(ctx, eng, cfg, snapReader)

	if box != nil && len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.EventsTopic != "" {
		bc, err := broadcaster.New(box, cfg.Kafka.Brokers, cfg.Kafka.EventsTopic)
		if err != nil {
			log.Fatalf("engined: broadcaster: %v", err)
		}
		bc.Start(ctx)
		defer bc.Close()
	}

	ingressGroup, ingressCtx := errgroup.WithContext(ctx)
	startIngress(ingressCtx, ingressGroup, eng, cfg)

	srv := grpcserver.NewServer(eng, cmdSeq, hub)
	grpcSrv := grpc.NewServer()
	pb.RegisterEngineServer(grpcSrv, srv)

	lis, err := net.Listen("tcp", cfg.GRPC.ListenAddr)
	if err != nil {
		log.Fatalf("engined: listen %s: %v", cfg.GRPC.ListenAddr, err)
	}

	go func() {
		log.Printf("engined: gRPC listening on %s", cfg.GRPC.ListenAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Printf("engined: gRPC server exited: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("engined: shutting down")
	grpcSrv.GracefulStop()
	cancel()
	if err := ingressGroup.Wait(); err != nil {
		log.Printf("engined: ingress group: %v", err)
	}
}

// startEpochReclaim runs the ticker that advances the memory epoch and
// returns retired orders to each instrument's pool, mirroring the
// teacher's svc.AdvanceEpoch ticker in cmd/server/main.go. snapReader
// is included in every reclaim pass so an order a concurrent
// snapshot.Reader.Walk might still be visiting is never handed back to
// the pool mid-walk.
func startEpochReclaim(ctx context.Context, eng *engine.Engine, cfg config.Config, snapReader *snapshot.Reader) {
	tick := cfg.EpochTick
	if tick <= 0 {
		tick = 2 * time.Second
	}
	go func() {
		ticker := time.NewTicker(tick)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, inst := range cfg.Instruments {
					if err := eng.Reclaim(inst.Id, snapReader.Epoch()); err != nil {
						log.Printf("engined: reclaim %s: %v", inst.Id, err)
					}
				}
			}
		}
	}()
}

// startSnapshotJob periodically dumps each instrument's book to disk
// via snapshot.Writer, a warm-restart optimization ahead of a full
// journal replay (teacher's service.StartSnapshotJob).
func startSnapshotJob(ctx context.Context, eng *engine.Engine, cfg config.Config, reader *snapshot.Reader) {
	if cfg.Journal.Dir == "" {
		return
	}
	w := &snapshot.Writer{Dir: cfg.Journal.Dir + "/snapshots"}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, inst := range cfg.Instruments {
					book, seq, ok := eng.InstrumentBook(inst.Id)
					if !ok {
						continue
					}
					snap := reader.Walk(inst.Id, seq, book)
					if err := w.Write(snap); err != nil {
						log.Printf("engined: snapshot %s: %v", inst.Id, err)
					}
				}
			}
		}
	}()
}

// startIngress wires one ingress.Replayer per configured instrument
// partition, feeding decoded commands into the engine's input queue —
// the durable-replay producer side of spec §2's data flow, active only
// when Kafka brokers are configured. All replayers share one
// errgroup: a reader that errors out cancels the group's context so
// its siblings stop too, rather than leaving the engine half-fed from
// some partitions and not others.
func startIngress(ctx context.Context, g *errgroup.Group, eng *engine.Engine, cfg config.Config) {
	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.CommandsTopic == "" {
		return
	}
	for _, inst := range cfg.Instruments {
		instrument := inst.Id
		r := ingress.New(cfg.Kafka.Brokers, cfg.Kafka.CommandsTopic, inst.CommandPartition, func(ctx context.Context, _ int, raw []byte) error {
			cmd, err := engine.DecodeCommand(raw)
			if err != nil {
				return err
			}
			cmd.Instrument = instrument
			return eng.Submit(ctx, cmd)
		})
		g.Go(func() error {
			if err := r.Run(ctx); err != nil {
				return fmt.Errorf("ingress %s: %w", instrument, err)
			}
			return nil
		})
	}
}
