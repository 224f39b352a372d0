package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"physiosite/api/internal/wire"
)

type batchTranslator interface {
	Translate(ctx context.Context, texts []string, lang string) []string
}

type cacheLookup interface {
	Lookup(ctx context.Context, texts []string, lang string) ([]*string, error)
}

func translateCmd(s *session) *cobra.Command {
	var lang, file string

	cmd := &cobra.Command{
		Use:   "translate",
		Short: "Translate a JSON array of strings through the shared cache",
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := cmd.InOrStdin()
			if file != "" && file != "-" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}

			cache := wire.Cache(s.cfg, s.logger.Named("kv"))
			defer cache.Close()
			svc, err := wire.Translator(cmd.Context(), s.cfg, cache, s.logger)
			if err != nil {
				return err
			}
			return runTranslate(cmd.Context(), svc, in, lang, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "target language (required)")
	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON file with an array of strings, - for stdin")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}

func runTranslate(ctx context.Context, svc batchTranslator, in io.Reader, lang string, out io.Writer) error {
	var texts []string
	if err := json.NewDecoder(in).Decode(&texts); err != nil {
		return fmt.Errorf("input must be a JSON array of strings: %w", err)
	}
	if strings.TrimSpace(lang) == "" {
		return fmt.Errorf("--lang is required")
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{"items": svc.Translate(ctx, texts, lang)})
}

func cacheCmd(s *session) *cobra.Command {
	c := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the translation cache",
	}
	c.AddCommand(cacheGetCmd(s))
	return c
}

func cacheGetCmd(s *session) *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "get TEXT...",
		Short: "Show cached translations for the given texts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !wire.CacheConfigured(s.cfg) {
				return fmt.Errorf("no kv store configured (set KV_REST_API_URL/KV_REST_API_TOKEN or REDIS_URL)")
			}
			cache := wire.Cache(s.cfg, s.logger.Named("kv"))
			defer cache.Close()
			svc, err := wire.Translator(cmd.Context(), s.cfg, cache, s.logger)
			if err != nil {
				return err
			}
			return runCacheGet(cmd.Context(), svc, lang, args, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&lang, "lang", "l", "", "target language (required)")
	_ = cmd.MarkFlagRequired("lang")
	return cmd
}

func runCacheGet(ctx context.Context, svc cacheLookup, lang string, texts []string, out io.Writer) error {
	values, err := svc.Lookup(ctx, texts, lang)
	if err != nil {
		return err
	}
	for i, text := range texts {
		value := "(miss)"
		if values[i] != nil {
			value = *values[i]
		}
		fmt.Fprintf(out, "%s\t%s\n", text, value)
	}
	return nil
}
