// btoon - BTOON serialization CLI
//
// Usage:
//
//	btoon encode [--compress algo] [--level l] [--schema s.yaml] [file]
//	btoon decode [--pretty] [file]
//	btoon validate --schema s.yaml [--strict] [--json] [file]
//	btoon inspect [file]
//	btoon stream pack [--compress algo] [file]    JSON lines -> frames
//	btoon stream unpack [file]                    frames -> JSON lines
//
// If no file is given, reads from stdin. Output goes to stdout unless
// --out is set.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/btoon-project/btoon-go/btoon"
	"github.com/btoon-project/btoon-go/stream"
)

const version = "0.1.0"

var log zerolog.Logger

func main() {
	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	app := &cli.App{
		Name:    "btoon",
		Usage:   "BTOON binary tree serialization toolkit",
		Version: version,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"q"}, Usage: "suppress diagnostics"},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("quiet") {
				log = log.Level(zerolog.ErrorLevel)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "encode",
				Usage:     "encode JSON to a BTOON document",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					outFlag(),
					compressFlag(),
					levelFlag(),
					&cli.StringFlag{Name: "schema", Aliases: []string{"s"}, Usage: "validate against schema `FILE` before encoding"},
					&cli.BoolFlag{Name: "strict", Usage: "reject fields the schema does not declare"},
				},
				Action: cmdEncode,
			},
			{
				Name:      "decode",
				Usage:     "decode a BTOON document to JSON",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					outFlag(),
					&cli.BoolFlag{Name: "pretty", Aliases: []string{"p"}, Usage: "indent JSON output"},
				},
				Action: cmdDecode,
			},
			{
				Name:      "validate",
				Usage:     "validate a document against a schema",
				ArgsUsage: "[file]",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "schema", Aliases: []string{"s"}, Required: true, Usage: "schema definition `FILE` (YAML)"},
					&cli.BoolFlag{Name: "strict", Usage: "reject fields the schema does not declare"},
					&cli.BoolFlag{Name: "json", Usage: "input is JSON rather than BTOON"},
				},
				Action: cmdValidate,
			},
			{
				Name:      "inspect",
				Usage:     "show the compression envelope of a document",
				ArgsUsage: "[file]",
				Action:    cmdInspect,
			},
			{
				Name:  "stream",
				Usage: "length-prefixed frame streams",
				Subcommands: []*cli.Command{
					{
						Name:      "pack",
						Usage:     "pack JSON lines into a frame stream",
						ArgsUsage: "[file]",
						Flags:     []cli.Flag{outFlag(), compressFlag(), levelFlag()},
						Action:    cmdStreamPack,
					},
					{
						Name:      "unpack",
						Usage:     "unpack a frame stream into JSON lines",
						ArgsUsage: "[file]",
						Flags:     []cli.Flag{outFlag()},
						Action:    cmdStreamUnpack,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func outFlag() cli.Flag {
	return &cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write output to `FILE`"}
}

func compressFlag() cli.Flag {
	return &cli.StringFlag{Name: "compress", Aliases: []string{"c"}, Value: "none",
		Usage: "compression `ALGO`: none, zlib, lz4, zstd, brotli, snappy, auto"}
}

func levelFlag() cli.Flag {
	return &cli.StringFlag{Name: "level", Value: "default",
		Usage: "compression effort: fastest, default, best"}
}

func encodeOptions(c *cli.Context) (*btoon.EncodeOptions, error) {
	algo, err := btoon.ParseAlgorithm(c.String("compress"))
	if err != nil {
		return nil, err
	}
	var level btoon.Level
	switch c.String("level") {
	case "", "default":
		level = btoon.LevelDefault
	case "fastest":
		level = btoon.LevelFastest
	case "best":
		level = btoon.LevelBest
	default:
		return nil, fmt.Errorf("unknown level %q", c.String("level"))
	}
	return &btoon.EncodeOptions{Compression: algo, Level: level}, nil
}

func readInput(c *cli.Context) ([]byte, error) {
	path := c.Args().First()
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func openOutput(c *cli.Context) (io.WriteCloser, error) {
	path := c.String("out")
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

func writeOutput(c *cli.Context, data []byte) error {
	out, err := openOutput(c)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		return err
	}
	if out != os.Stdout {
		return out.Close()
	}
	return nil
}

func loadSchema(path string) (*btoon.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return btoon.SchemaFromYAML(data)
}

func cmdEncode(c *cli.Context) error {
	opts, err := encodeOptions(c)
	if err != nil {
		return err
	}
	input, err := readInput(c)
	if err != nil {
		return err
	}
	v, err := btoon.FromJSON(input)
	if err != nil {
		return err
	}

	var data []byte
	if path := c.String("schema"); path != "" {
		schema, err := loadSchema(path)
		if err != nil {
			return err
		}
		data, err = btoon.EncodeWithSchema(v, schema, c.Bool("strict"), opts)
		if err != nil {
			return err
		}
	} else {
		data, err = btoon.Encode(v, opts)
		if err != nil {
			return err
		}
	}

	log.Info().Int("json_bytes", len(input)).Int("btoon_bytes", len(data)).Msg("encoded")
	return writeOutput(c, data)
}

func cmdDecode(c *cli.Context) error {
	input, err := readInput(c)
	if err != nil {
		return err
	}
	v, err := btoon.Decode(input)
	if err != nil {
		return err
	}
	var out []byte
	if c.Bool("pretty") {
		out, err = btoon.ToJSONIndent(v)
	} else {
		out, err = btoon.ToJSON(v)
	}
	if err != nil {
		return err
	}
	return writeOutput(c, append(out, '\n'))
}

func cmdValidate(c *cli.Context) error {
	schema, err := loadSchema(c.String("schema"))
	if err != nil {
		return err
	}
	input, err := readInput(c)
	if err != nil {
		return err
	}

	var v *btoon.Value
	if c.Bool("json") {
		v, err = btoon.FromJSON(input)
	} else {
		v, err = btoon.Decode(input)
	}
	if err != nil {
		return err
	}

	if err := btoon.Validate(v, schema, c.Bool("strict")); err != nil {
		return err
	}
	log.Info().Str("schema", schema.Name()).Str("version", schema.Version()).Msg("valid")
	return nil
}

func cmdInspect(c *cli.Context) error {
	input, err := readInput(c)
	if err != nil {
		return err
	}
	info, err := btoon.Envelope(input)
	if err != nil {
		return err
	}
	fmt.Printf("algorithm:           %s\n", info.Algorithm)
	fmt.Printf("payload bytes:       %d\n", info.PayloadLength)
	fmt.Printf("uncompressed bytes:  %d\n", info.UncompressedLength)
	if info.UncompressedLength > 0 {
		ratio := float64(info.PayloadLength) / float64(info.UncompressedLength)
		fmt.Printf("ratio:               %.3f\n", ratio)
	}
	v, err := btoon.Decode(input)
	if err != nil {
		return err
	}
	fmt.Printf("root type:           %s\n", v.Type())
	switch v.Type() {
	case btoon.TypeMap:
		fmt.Printf("fields:              %d\n", v.Len())
	case btoon.TypeArray:
		fmt.Printf("elements:            %d\n", v.Len())
	}
	return nil
}

func cmdStreamPack(c *cli.Context) error {
	opts, err := encodeOptions(c)
	if err != nil {
		return err
	}

	var input io.Reader = os.Stdin
	if path := c.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}
	out, err := openOutput(c)
	if err != nil {
		return err
	}

	w := stream.NewWriter(out,
		stream.WithCompression(opts.Compression),
		stream.WithLevel(opts.Level))

	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 1<<20), 64<<20)
	count := 0
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		v, err := btoon.FromJSON(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", count+1, err)
		}
		if err := w.Write(v); err != nil {
			return err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	log.Info().Int("frames", count).Msg("packed")
	if out != os.Stdout {
		return out.Close()
	}
	return nil
}

func cmdStreamUnpack(c *cli.Context) error {
	var input io.Reader = os.Stdin
	if path := c.Args().First(); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}
	out, err := openOutput(c)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(out)

	r := stream.NewReader(input)
	count := 0
	for {
		v, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("frame %d: %w", count+1, err)
		}
		line, err := btoon.ToJSON(v)
		if err != nil {
			return err
		}
		bw.Write(line)
		bw.WriteByte('\n')
		count++
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	log.Info().Int("frames", count).Msg("unpacked")
	if out != os.Stdout {
		return out.Close()
	}
	return nil
}
