package config

import (
	"flag"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vadiminshakov/sasaft/core/dto"
	"github.com/vadiminshakov/sasaft/core/receipt"
	"gopkg.in/yaml.v3"
)

type AFT struct {
	InHouseToGame       bool   `yaml:"in_house_to_game"`
	InHouseFromGame     bool   `yaml:"in_house_from_game"`
	BonusToGame         bool   `yaml:"bonus_to_game"`
	WinToHost           bool   `yaml:"win_to_host"`
	DebitToGame         bool   `yaml:"debit_to_game"`
	PartialToHost       bool   `yaml:"partial_to_host"`
	TransferToTicket    bool   `yaml:"transfer_to_ticket"`
	CustomTicketData    bool   `yaml:"custom_ticket_data"`
	TransactionReceipts bool   `yaml:"transaction_receipts"`
	RequireRegistration bool   `yaml:"require_registration"`
	TransferLimit       uint64 `yaml:"transfer_limit"`
	CreditLimit         uint64 `yaml:"credit_limit"`
}

type Receipt struct {
	Location string   `yaml:"location"`
	Address1 string   `yaml:"address1"`
	Address2 string   `yaml:"address2"`
	InHouse  []string `yaml:"in_house"`
	Debit    []string `yaml:"debit"`
}

type Config struct {
	HostAddr       string   `yaml:"host_addr"`
	Whitelist      []string `yaml:"whitelist"`
	Address        uint64   `yaml:"address"`
	AssetNumber    uint64   `yaml:"asset_number"`
	DataDir        string   `yaml:"data_dir"`
	LogLevel       string   `yaml:"log_level"`
	PersistHistory bool     `yaml:"persist_history"`
	MinLockTimeout uint64   `yaml:"min_lock_timeout"`
	OpeningCredits uint64   `yaml:"opening_credits"`
	PrinterOnline  bool     `yaml:"printer_online"`
	// RestrictedExpiration is the default expiration, in days, of restricted credits.
	RestrictedExpiration uint64 `yaml:"restricted_expiration"`

	AFT     AFT     `yaml:"features"`
	Receipt Receipt `yaml:"receipt"`
}

// Default returns the configuration used when neither a file nor flags say otherwise.
func Default() *Config {
	return &Config{
		HostAddr:       "localhost:3050",
		Whitelist:      []string{"127.0.0.1"},
		Address:        1,
		AssetNumber:    1,
		DataDir:        "./data",
		LogLevel:       "info",
		PersistHistory: true,
		MinLockTimeout: 100,
		PrinterOnline:  true,

		RestrictedExpiration: 30,

		AFT: AFT{
			InHouseToGame:   true,
			InHouseFromGame: true,
			PartialToHost:   true,
			TransferLimit:   1000000,
		},
		Receipt: Receipt{Location: "Gaming floor"},
	}
}

// Get creates configuration from yaml configuration file (if '-config=' flag
// specified) and command-line arguments. Flags win over the file.
func Get() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func Load(args []string) (*Config, error) {
	cfg := Default()

	path := configPath(args)
	if path != "" {
		if err := cfg.loadYAML(path); err != nil {
			return nil, err
		}
	}

	fs := flag.NewFlagSet("sasaft", flag.ContinueOnError)
	fs.String("config", path, "path to a yaml configuration file")
	fs.StringVar(&cfg.HostAddr, "hostaddr", cfg.HostAddr, "host link listen address")
	fs.Func("whitelist", "comma separated allowed hosts", func(v string) error {
		cfg.Whitelist = strings.Split(v, ",")
		return nil
	})
	fs.Uint64Var(&cfg.Address, "address", cfg.Address, "SAS address of the machine (1-127)")
	fs.Uint64Var(&cfg.AssetNumber, "asset", cfg.AssetNumber, "asset number")
	fs.StringVar(&cfg.DataDir, "datadir", cfg.DataDir, "directory for the database and write-ahead log")
	fs.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "log level")
	fs.BoolVar(&cfg.PersistHistory, "persist", cfg.PersistHistory, "persist history, registration and receipt data")
	fs.Uint64Var(&cfg.MinLockTimeout, "minlock", cfg.MinLockTimeout, "shortest lock, in hundredths of a second")
	fs.Uint64Var(&cfg.OpeningCredits, "credits", cfg.OpeningCredits, "opening cashable credits, in cents")
	fs.BoolVar(&cfg.PrinterOnline, "printer", cfg.PrinterOnline, "printer available")
	fs.Uint64Var(&cfg.RestrictedExpiration, "expiration", cfg.RestrictedExpiration, "default restricted credit expiration, in days")

	f := &cfg.AFT
	fs.BoolVar(&f.InHouseToGame, "inhouse-in", f.InHouseToGame, "allow in-house transfers to the game")
	fs.BoolVar(&f.InHouseFromGame, "inhouse-out", f.InHouseFromGame, "allow in-house transfers to the host")
	fs.BoolVar(&f.BonusToGame, "bonus", f.BonusToGame, "allow bonus awards")
	fs.BoolVar(&f.WinToHost, "win", f.WinToHost, "allow win transfers to the host")
	fs.BoolVar(&f.DebitToGame, "debit", f.DebitToGame, "allow debit transfers")
	fs.BoolVar(&f.PartialToHost, "partial", f.PartialToHost, "allow partial transfers to the host")
	fs.BoolVar(&f.TransferToTicket, "ticket", f.TransferToTicket, "allow transfers to ticket")
	fs.BoolVar(&f.CustomTicketData, "custom-ticket", f.CustomTicketData, "support custom ticket data")
	fs.BoolVar(&f.TransactionReceipts, "receipts", f.TransactionReceipts, "print transaction receipts")
	fs.BoolVar(&f.RequireRegistration, "require-registration", f.RequireRegistration, "in-house transfers need a registered machine")
	fs.Uint64Var(&f.TransferLimit, "transfer-limit", f.TransferLimit, "largest single transfer, in cents")
	fs.Uint64Var(&f.CreditLimit, "credit-limit", f.CreditLimit, "largest credit meter, in cents, 0 for none")

	if err := fs.Parse(args); err != nil {
		return nil, errors.Wrap(err, "parse flags")
	}
	return cfg, cfg.validate()
}

func (c *Config) loadYAML(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "open config")
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return errors.Wrapf(err, "decode %s", path)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Address == 0 || c.Address > 0x7F {
		return errors.Errorf("address %d out of range", c.Address)
	}
	if c.AssetNumber == 0 || c.AssetNumber > 0xFFFFFFFF {
		return errors.Errorf("asset number %d out of range", c.AssetNumber)
	}
	if c.MinLockTimeout > 9999 {
		return errors.Errorf("lock timeout floor %d out of range", c.MinLockTimeout)
	}
	if c.RestrictedExpiration > 9999 {
		return errors.Errorf("restricted expiration %d out of range", c.RestrictedExpiration)
	}
	if len(c.Receipt.InHouse) > 4 || len(c.Receipt.Debit) > 4 {
		return errors.New("at most four receipt lines per transfer class")
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// configPath finds the -config flag before the full flag set exists.
func configPath(args []string) string {
	for i, a := range args {
		name := strings.TrimLeft(a, "-")
		if a == name {
			continue
		}
		if v, ok := strings.CutPrefix(name, "config="); ok {
			return v
		}
		if name == "config" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// Features projects the configuration into the engine's feature switches.
func (c *Config) Features() dto.Features {
	f := c.AFT
	return dto.Features{
		InHouseToGame:       f.InHouseToGame,
		InHouseFromGame:     f.InHouseFromGame,
		BonusToGame:         f.BonusToGame,
		WinToHost:           f.WinToHost,
		DebitToGame:         f.DebitToGame,
		PartialToHost:       f.PartialToHost,
		TransferToTicket:    f.TransferToTicket,
		CustomTicketData:    f.CustomTicketData,
		TransactionReceipts: f.TransactionReceipts,
		RequireRegistration: f.RequireRegistration,
		TransferLimit:       f.TransferLimit,
		CreditLimit:         f.CreditLimit,
	}
}

// ReceiptDefaults returns the receipt fields a host resets with UseDefault.
func (c *Config) ReceiptDefaults() map[receipt.Field]string {
	out := map[receipt.Field]string{
		receipt.Location: c.Receipt.Location,
		receipt.Address1: c.Receipt.Address1,
		receipt.Address2: c.Receipt.Address2,
	}
	for i, line := range c.Receipt.InHouse {
		out[receipt.InHouseLine1+receipt.Field(i)] = line
	}
	for i, line := range c.Receipt.Debit {
		out[receipt.DebitLine1+receipt.Field(i)] = line
	}
	return out
}
