// Package fne wires the Peer Session Manager, Call Router, Rule &
// Table Plane, Reporting Channel, and the optional persistence/MQTT/
// metrics side-channels into one running FNE core, one UDP listener
// per configured system (spec.md §1, §5).
package fne

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/k9fne/fned/pkg/alias"
	"github.com/k9fne/fned/pkg/config"
	"github.com/k9fne/fned/pkg/database"
	"github.com/k9fne/fned/pkg/heartbeat"
	"github.com/k9fne/fned/pkg/logger"
	"github.com/k9fne/fned/pkg/metrics"
	"github.com/k9fne/fned/pkg/mqtt"
	"github.com/k9fne/fned/pkg/peer"
	"github.com/k9fne/fned/pkg/reporting"
	"github.com/k9fne/fned/pkg/router"
	"github.com/k9fne/fned/pkg/rules"
)

// systemRuntime is one configured system's live state: its shared
// router.System, its UDP socket, and (mode-dependent) either a
// master-mode FSM or a peer-mode client heartbeat.
type systemRuntime struct {
	name string
	cfg  config.SystemConfig
	mode string

	sys  *router.System
	conn *net.UDPConn
	log  *logger.Logger

	fsm *peer.FSM // master mode only

	heartbeat *heartbeat.Heartbeat // peer mode only
	selfPeer  *peer.Peer           // peer mode only
}

// Core owns every subsystem SPEC_FULL.md names and the per-system UDP
// sockets that feed the Call Router.
type Core struct {
	cfg *config.Config
	log *logger.Logger

	router  *router.Router
	metrics *metrics.Collector
	bus     *reporting.Bus
	aliases *alias.Table

	db           *database.DB
	recordWriter *database.RecordWriter
	mqttPub      *mqtt.Publisher
	reportSrv    *reporting.Server
	promSrv      *metrics.PrometheusServer

	systems map[string]*systemRuntime

	whitelistRIDs []uint32
	blacklistRIDs []uint32
}

// NewCore builds every subsystem from cfg but does not yet bind any
// sockets or start any goroutines; call Run to start serving.
func NewCore(cfg *config.Config, log *logger.Logger) (*Core, error) {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	ruleList, err := loadRules(cfg, log)
	if err != nil {
		return nil, err
	}
	engine := rules.NewEngine(ruleList)

	systems := make(map[string]*router.System, len(cfg.Systems))
	for name, sc := range cfg.Systems {
		if !sc.Enabled {
			continue
		}
		systems[name] = router.NewSystem(name, sc.GroupHangtime)
	}

	c := &Core{
		cfg:     cfg,
		log:     log,
		router:  router.NewRouter(systems, engine),
		metrics: metrics.NewCollector(nil),
		bus:     reporting.NewBus(),
		systems: make(map[string]*systemRuntime, len(systems)),
	}

	if err := c.loadACLFiles(); err != nil {
		return nil, err
	}
	if cfg.Aliases.Path != "" && cfg.Aliases.AliasFilename != "" {
		table, err := alias.LoadTable(joinConfigPath(cfg.Aliases.Path, cfg.Aliases.AliasFilename), log.WithComponent("alias"))
		if err != nil {
			log.Warn("alias table load failed", logger.Error(err))
		} else {
			c.aliases = table
		}
	}

	c.applyACLToSystems(engine.Current())

	for name, sys := range systems {
		sc := cfg.Systems[name]
		sr := &systemRuntime{
			name: name,
			cfg:  sc,
			mode: strings.ToLower(sc.Mode),
			sys:  sys,
			log:  log.WithComponent("fne." + name),
		}
		if sr.mode == "master" {
			sr.fsm = &peer.FSM{
				Registry:   sys.Registry,
				Passphrase: func(uint32) string { return sc.Passphrase },
				Log:        sr.log,
			}
		}
		c.systems[name] = sr
	}

	if cfg.Database.Enabled {
		db, err := database.NewDB(database.Config{Path: cfg.Database.Path}, log.WithComponent("database"))
		if err != nil {
			return nil, fmt.Errorf("fne: database init: %w", err)
		}
		c.db = db
		c.recordWriter = database.NewRecordWriter(db, log.WithComponent("database"))
	}

	if cfg.MQTT.Enabled {
		c.mqttPub = mqtt.New(mqtt.Config{
			Enabled:     cfg.MQTT.Enabled,
			Broker:      cfg.MQTT.Broker,
			TopicPrefix: cfg.MQTT.TopicPrefix,
			ClientID:    cfg.MQTT.ClientID,
			Username:    cfg.MQTT.Username,
			Password:    cfg.MQTT.Password,
			QoS:         cfg.MQTT.QoS,
			Retained:    cfg.MQTT.Retained,
		}, log.WithComponent("mqtt"))
	}

	if cfg.Reports.Enabled {
		c.reportSrv = reporting.NewServer(fmt.Sprintf(":%d", cfg.Reports.Port), cfg.Reports.AllowedIPs, c.bus)
		c.reportSrv.Log = log.WithComponent("reporting")
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		c.promSrv = metrics.NewPrometheusServer(metrics.PrometheusConfig{
			Enabled: cfg.Metrics.Prometheus.Enabled,
			Port:    cfg.Metrics.Prometheus.Port,
			Path:    cfg.Metrics.Prometheus.Path,
		}, c.metrics, log.WithComponent("metrics"))
	}

	return c, nil
}

func loadRules(cfg *config.Config, log *logger.Logger) ([]*rules.Rule, error) {
	if cfg.Global.RulesFile == "" {
		return nil, nil
	}
	list, err := rules.LoadFile(cfg.Global.RulesFile)
	if err != nil {
		log.Warn("rules file load failed, starting with an empty rule set", logger.Error(err))
		return nil, nil
	}
	return list, nil
}

func (c *Core) loadACLFiles() error {
	if c.cfg.Aliases.Path == "" {
		return nil
	}
	if c.cfg.Aliases.WhitelistFilename != "" {
		ids, err := alias.LoadRIDList(joinConfigPath(c.cfg.Aliases.Path, c.cfg.Aliases.WhitelistFilename), c.log.WithComponent("alias"))
		if err != nil {
			c.log.Warn("whitelist load failed", logger.Error(err))
		} else {
			c.whitelistRIDs = ids
		}
	}
	if c.cfg.Aliases.BlacklistFilename != "" {
		ids, err := alias.LoadRIDList(joinConfigPath(c.cfg.Aliases.Path, c.cfg.Aliases.BlacklistFilename), c.log.WithComponent("alias"))
		if err != nil {
			c.log.Warn("blacklist load failed", logger.Error(err))
		} else {
			c.blacklistRIDs = ids
		}
	}
	return nil
}

// applyACLToSystems rebuilds every system's ACL tables from the
// current rule set plus the loaded whitelist/blacklist RID files
// (spec.md §4.6 reload step).
func (c *Core) applyACLToSystems(set *rules.Set) {
	for name, sys := range c.router.Systems {
		active := activeTGIDsForSystem(set, name)
		ignored := ignoredPeersForSystem(set, name)
		sys.ACL.Load(c.whitelistRIDs, c.blacklistRIDs, active, ignored)
	}
}

func joinConfigPath(dir, file string) string {
	if dir == "" {
		return file
	}
	if strings.HasSuffix(dir, "/") {
		return dir + file
	}
	return dir + "/" + file
}

// Run binds every enabled system's UDP socket and starts every
// configured subsystem, blocking until ctx is cancelled. On
// cancellation it broadcasts a best-effort close frame to every
// connected peer (spec.md §5 Cancellation) before returning.
func (c *Core) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	errCh := make(chan error, len(c.systems)+4)
	done := make(chan struct{})

	for name, sr := range c.systems {
		addr, port := sr.cfg.Address, sr.cfg.Port
		if sr.mode == "peer" {
			addr, port = "", 0 // ephemeral local socket for an outbound client
		}
		conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.ParseIP(addr), Port: port})
		if err != nil {
			return fmt.Errorf("fne: listen %s: %w", name, err)
		}
		sr.conn = conn

		wg.Add(1)
		switch sr.mode {
		case "master":
			go func(sr *systemRuntime) {
				defer wg.Done()
				c.runMaster(ctx, sr)
			}(sr)
		case "peer":
			go func(sr *systemRuntime) {
				defer wg.Done()
				c.runPeerClient(ctx, sr)
			}(sr)
		default:
			wg.Done()
			c.log.Warn("unknown system mode, not starting", logger.System(name), logger.String("mode", sr.cfg.Mode))
		}
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.runTickers(ctx)
	}()

	if c.reportSrv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.reportSrv.ListenAndServe(); err != nil {
				select {
				case errCh <- err:
				default:
				}
			}
		}()
	}

	if c.recordWriter != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.recordWriter.Run(c.bus, done)
		}()
	}

	if c.mqttPub != nil {
		if err := c.mqttPub.Start(); err != nil {
			c.log.Error("mqtt start failed", logger.Error(err))
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.mqttPub.RunBus(c.bus, done)
		}()
	}

	if c.promSrv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.promSrv.Start(ctx); err != nil && err != context.Canceled {
				select {
				case errCh <- err:
				default:
				}
			}
		}()
	}

	<-ctx.Done()
	c.shutdown()
	close(done)
	if c.reportSrv != nil {
		c.reportSrv.Close()
	}
	if c.mqttPub != nil {
		c.mqttPub.Stop()
	}
	if c.db != nil {
		c.db.Close()
	}
	for _, sr := range c.systems {
		if sr.conn != nil {
			sr.conn.Close()
		}
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

// shutdown sends a best-effort, non-blocking close notice to every
// connected peer: MSTCL from a master system, RPTCL from a peer
// system (spec.md §5 Cancellation).
func (c *Core) shutdown() {
	for _, sr := range c.systems {
		if sr.conn == nil {
			continue
		}
		switch sr.mode {
		case "master":
			for _, p := range sr.sys.Registry.Snapshot() {
				frame := closeFrameFor(p.ID)
				sr.conn.SetWriteDeadline(time.Now().Add(100 * time.Millisecond))
				sr.conn.WriteToUDP(frame, p.Endpoint)
			}
		case "peer":
			if sr.selfPeer != nil && sr.selfPeer.CurrentState() == peer.StateConnected {
				frame := rptclFrame(sr.cfg.PeerID)
				masterAddr := &net.UDPAddr{IP: net.ParseIP(sr.cfg.MasterAddress), Port: sr.cfg.MasterPort}
				sr.conn.SetWriteDeadline(time.Now().Add(100 * time.Millisecond))
				sr.conn.WriteToUDP(frame, masterAddr)
			}
		}
	}
}
