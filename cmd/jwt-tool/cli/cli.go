package cli

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/ctl"
	"github.com/effective-security/x/print"
	"github.com/effective-security/xjwt/jwt"
	"github.com/effective-security/xlog"
	"github.com/spf13/afero"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/xjwt", "cli")

// Cli provides CLI context to run commands
type Cli struct {
	Version ctl.VersionFlag `name:"version" help:"Print version information and quit" hidden:""`

	Cfg   string `help:"Location of YAML or JSON configuration file"`
	Debug bool   `short:"D" help:"Enable debug logging"`

	// Stdin is the source to read from, typically set to os.Stdin
	stdin io.Reader
	// Output is the destination for all output from the command, typically set to os.Stdout
	output io.Writer
	// ErrOutput is the destinaton for errors.
	// If not set, errors will be written to os.StdError
	errOutput io.Writer

	fs     afero.Fs
	config *Config
}

// FS returns the file system to read input files,
// the OS file system by default
func (c *Cli) FS() afero.Fs {
	if c.fs == nil {
		c.fs = afero.NewOsFs()
	}
	return c.fs
}

// WithFS allows to specify a custom file system
func (c *Cli) WithFS(fs afero.Fs) *Cli {
	c.fs = fs
	return c
}

// Reader is the source to read from, typically set to os.Stdin
func (c *Cli) Reader() io.Reader {
	if c.stdin != nil {
		return c.stdin
	}
	return os.Stdin
}

// WithReader allows to specify a custom reader
func (c *Cli) WithReader(reader io.Reader) *Cli {
	c.stdin = reader
	return c
}

// Writer returns a writer for control output
func (c *Cli) Writer() io.Writer {
	if c.output != nil {
		return c.output
	}
	return os.Stdout
}

// WithWriter allows to specify a custom writer
func (c *Cli) WithWriter(out io.Writer) *Cli {
	c.output = out
	return c
}

// ErrWriter returns a writer for control output
func (c *Cli) ErrWriter() io.Writer {
	if c.errOutput != nil {
		return c.errOutput
	}
	return os.Stderr
}

// WithErrWriter allows to specify a custom error writer
func (c *Cli) WithErrWriter(out io.Writer) *Cli {
	c.errOutput = out
	return c
}

// Config returns the loaded configuration,
// or an empty one if --cfg is not provided
func (c *Cli) Config() *Config {
	if c.config == nil {
		c.config = &Config{}
	}
	return c.config
}

// WithConfig allows to specify the configuration
func (c *Cli) WithConfig(cfg *Config) *Cli {
	c.config = cfg
	return c
}

// AfterApply hook loads config
func (c *Cli) AfterApply(_ *kong.Kong, _ kong.Vars) error {
	if c.Debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.ERROR)
	}

	if c.Cfg != "" {
		cfg, err := LoadConfig(c.Cfg)
		if err != nil {
			return err
		}
		c.config = cfg
	}
	return nil
}

// Codec returns jwt.Codec configured by the loaded configuration
func (c *Cli) Codec(opts ...jwt.Option) (*jwt.Codec, error) {
	cfgOpts, err := c.Config().CodecOptions()
	if err != nil {
		return nil, err
	}
	return jwt.New(append(cfgOpts, opts...)...), nil
}

// Secret returns the secret from the flag value,
// or from the configuration for the key ID.
// The flag supports env:// and file:// schemas.
func (c *Cli) Secret(flag, kid string) ([]byte, error) {
	if flag != "" {
		s, err := resolveValue(flag)
		if err != nil {
			return nil, errors.WithMessage(err, "unable to load secret")
		}
		if s == "" {
			return nil, errors.WithMessage(jwt.ErrMissingSecret, "empty --secret")
		}
		return []byte(s), nil
	}

	s := c.Config().SecretFor(kid)
	if len(s) == 0 {
		return nil, errors.WithMessage(jwt.ErrMissingSecret, "use --secret or --cfg")
	}
	return s, nil
}

// WriteJSON prints response to out
func (c *Cli) WriteJSON(value any) {
	print.JSON(c.Writer(), value)
}

// Print prints response to out with the registered printer
func (c *Cli) Print(value any) {
	print.Print(c.Writer(), value)
}

// ReadFile reads from stdin if the file is "-" or empty
func (c *Cli) ReadFile(filename string) ([]byte, error) {
	if filename == "" || filename == "-" {
		b, err := io.ReadAll(c.Reader())
		if err != nil {
			return nil, errors.WithStack(err)
		}
		return b, nil
	}
	b, err := afero.ReadFile(c.FS(), filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return b, nil
}
