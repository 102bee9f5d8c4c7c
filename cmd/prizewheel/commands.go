package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"prizewheel/pkg/db/pagination"
	"prizewheel/pkg/errutil"
	"prizewheel/services/cooldown"
	"prizewheel/services/wheel"
)

const timeLayout = "2006-01-02 15:04:05"

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cmdSpin(ctx context.Context, d deps, opts cliOptions, out io.Writer) error {
	if !opts.json {
		fmt.Fprintln(out, "Spinning...")
	}

	res, err := d.svc.Spin(ctx)
	if err != nil {
		var be errutil.BaseError
		if wheel.IsLocked(err) && errutil.As(err, &be) && !opts.json {
			for _, detail := range be.Details {
				if detail.Field == "retry_after" {
					fmt.Fprintf(out, "The wheel is locked. Next spin in %s\n", detail.Message)
				}
			}
		}
		return err
	}

	if opts.json {
		return printJSON(out, res)
	}

	fmt.Fprintf(out, "You got: %s\n", res.Reward.Label)
	if res.Reward.Detail != "" {
		fmt.Fprintln(out, res.Reward.Detail)
	}
	if res.RedeemURL != "" {
		fmt.Fprintf(out, "Redeem on WhatsApp: %s\n", res.RedeemURL)
	}
	if res.Recorded {
		fmt.Fprintf(out, "Next spin at: %s\n", res.NextSpinAt.Local().Format(timeLayout))
	} else {
		fmt.Fprintln(out, "Warning: this spin could not be saved on the device")
	}
	return nil
}

func cmdStatus(ctx context.Context, d deps, opts cliOptions, out io.Writer) error {
	if opts.watch {
		for left := range d.gate.Watch(ctx, time.Second) {
			fmt.Fprintf(out, "\r%s", cooldown.FormatHMS(left))
		}
		fmt.Fprintln(out)
		if err := ctx.Err(); err != nil {
			return errutil.ClientClosedRequest("watch interrupted", err)
		}
		fmt.Fprintln(out, "The wheel is open, go spin!")
		return nil
	}

	st := d.svc.Status(ctx)
	if opts.json {
		return printJSON(out, st)
	}

	fmt.Fprintf(out, "State: %s\n", st.State)
	if st.NextSpinAt != nil {
		fmt.Fprintf(out, "Next spin in: %s (%s)\n", st.Countdown, st.NextSpinAt.Local().Format(timeLayout))
	}
	return nil
}

func cmdRewards(ctx context.Context, d deps, opts cliOptions, out io.Writer) error {
	table := d.svc.Table()
	stats, err := d.svc.Stats(ctx)
	if err != nil {
		return err
	}
	if opts.json {
		return printJSON(out, map[string]any{"rewards": table.Entries(), "stats": stats})
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tID\tLABEL\tKIND\tWEIGHT\tCHANCE\tSPINS\tSEEN")
	for i, r := range table.Entries() {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%.1f%%\t%d\t%.1f%%\n",
			i, r.ID, r.Label, r.Kind.Type(),
			strconv.FormatFloat(r.Weight, 'f', -1, 64),
			stats[i].Probability*100,
			stats[i].Spins,
			stats[i].Observed*100,
		)
	}
	return w.Flush()
}

func cmdHistory(ctx context.Context, d deps, opts cliOptions, out io.Writer) error {
	spins, info, err := d.svc.History(ctx, pagination.Pagination{Limit: opts.limit, Cursor: opts.cursor})
	if err != nil {
		return err
	}

	if opts.json {
		return printJSON(out, map[string]any{"spins": spins, "page_info": info})
	}

	if len(spins) == 0 {
		fmt.Fprintln(out, "No spins yet.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SPUN AT\tREWARD\tLABEL\tWINNING")
	for _, s := range spins {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\n", s.SpunAt.Local().Format(timeLayout), s.RewardID, s.Label, s.Winning)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if info.HasMore {
		fmt.Fprintf(out, "More: --cursor %s\n", info.NextCursor)
	}
	return nil
}

func cmdLink(d deps, opts cliOptions, id string, out io.Writer) error {
	r, err := d.svc.Reward(id)
	if err != nil {
		return err
	}
	link, err := d.links.RedeemURL(r)
	if err != nil {
		return err
	}

	if opts.qr != "" {
		if err := d.links.WriteQRCode(r, opts.size, opts.qr); err != nil {
			return err
		}
	}

	if opts.json {
		return printJSON(out, map[string]string{"id": r.ID, "url": link, "qr": opts.qr})
	}

	fmt.Fprintln(out, link)
	if opts.qr != "" {
		fmt.Fprintf(out, "QR code written to %s\n", opts.qr)
	}
	return nil
}
