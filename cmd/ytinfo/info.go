package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ytget/ytinfo/types"
	"github.com/ytget/ytinfo/youtube/formats"
	"github.com/ytget/ytinfo/youtube/videoid"
)

func newInfoCmd(a *app) *cobra.Command {
	var (
		flagFormat string
		flagExt    string
	)
	cmd := &cobra.Command{
		Use:   "info <video_id_or_url>",
		Short: "Resolve full video info with deciphered and manifest formats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := videoid.Extract(args[0])
			if err != nil {
				return err
			}
			info, err := a.newResolver(a.cfg).ResolveFull(cmd.Context(), id)
			if err != nil {
				return err
			}
			if flagFormat == "" && flagExt == "" {
				return printJSON(cmd.OutOrStdout(), info)
			}
			f := formats.Select(info.Formats, flagFormat, flagExt)
			if f == nil {
				return errors.New("no format matches the selector")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), f.URL)
			return err
		},
	}
	cmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Print the URL of one format (e.g., 'itag=22', 'best', 'height<=480')")
	cmd.Flags().StringVar(&flagExt, "ext", "", "Prefer formats with this extension (e.g., 'mp4', 'webm')")
	return cmd
}

func newBasicCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "basic <video_id_or_url>",
		Short: "Resolve basic video info without deciphering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := videoid.Extract(args[0])
			if err != nil {
				return err
			}
			info, err := a.newResolver(a.cfg).ResolveBasic(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), info)
		},
	}
}

func printJSON(w io.Writer, info *types.VideoInfo) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(info)
}
