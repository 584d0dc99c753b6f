package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/rishi7822/Finalproject/internal/provider"
	"github.com/rishi7822/Finalproject/internal/session"
	"github.com/rishi7822/Finalproject/pkg/errno"
	"github.com/rishi7822/Finalproject/pkg/units"
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send SOL to another account",
	Long: `Unlocks the keystore, builds a system transfer of --amount SOL to --to,
signs it and waits for the cluster to confirm it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		amountText, _ := cmd.Flags().GetString("amount")
		yes, _ := cmd.Flags().GetBool("yes")

		amount, err := decimal.NewFromString(strings.TrimSpace(amountText))
		if err != nil || !amount.IsPositive() {
			return fmt.Errorf("--amount must be a number greater than 0, got %q", amountText)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		client, err := newRPCClient()
		if err != nil {
			return err
		}

		var opts []provider.Option
		if !yes {
			opts = append(opts, provider.WithApproval(confirmOnTerminal(os.Stdin, cmd.ErrOrStderr())))
		}
		ctrl := session.New(openWallet(opts...), client)

		if err := ctrl.Connect(ctx); err != nil && !errors.Is(err, errno.ErrBalanceFetch) {
			return err
		}
		if v := ctrl.View(); v.Balance != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "From %s (balance %s SOL)\n", v.Owner, v.Balance)
		}

		ctrl.SetRecipient(to)
		ctrl.SetAmount(amount)
		err = ctrl.SendTransfer(ctx)
		if errors.Is(err, errno.ErrNotReady) {
			return fmt.Errorf("%w: check --to and --amount", err)
		}

		fmt.Fprintln(cmd.OutOrStdout(), ctrl.View().Status)
		return err
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().String("to", "", "recipient address (base58)")
	sendCmd.Flags().String("amount", "", "amount in SOL")
	sendCmd.Flags().BoolP("yes", "y", false, "sign without asking for confirmation")
	_ = sendCmd.MarkFlagRequired("to")
	_ = sendCmd.MarkFlagRequired("amount")
}

// confirmOnTerminal shows the transfer and asks before signing.
func confirmOnTerminal(in io.Reader, out io.Writer) provider.ApproveFunc {
	return func(ctx context.Context, tx *solana.Transaction) error {
		fmt.Fprintln(out, "\n================ Transaction ================")
		for _, line := range describeTransfers(tx) {
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out, "=============================================")
		fmt.Fprint(out, "Sign and send? [y/N] ")

		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "y", "yes":
			return nil
		default:
			return errors.New("declined")
		}
	}
}

// describeTransfers lists the system transfers in tx.
func describeTransfers(tx *solana.Transaction) []string {
	var lines []string
	for _, ix := range tx.Message.Instructions {
		if int(ix.ProgramIDIndex) >= len(tx.Message.AccountKeys) ||
			!tx.Message.AccountKeys[ix.ProgramIDIndex].Equals(solana.SystemProgramID) {
			lines = append(lines, "unknown instruction")
			continue
		}
		accounts, err := ix.ResolveInstructionAccounts(&tx.Message)
		if err != nil {
			lines = append(lines, "unknown instruction")
			continue
		}
		decoded, err := system.DecodeInstruction(accounts, ix.Data)
		if err != nil {
			lines = append(lines, "unknown system instruction")
			continue
		}
		transfer, ok := decoded.Impl.(*system.Transfer)
		if !ok || transfer.Lamports == nil {
			lines = append(lines, "system instruction")
			continue
		}
		lines = append(lines,
			fmt.Sprintf("From:   %s", transfer.GetFundingAccount().PublicKey),
			fmt.Sprintf("To:     %s", transfer.GetRecipientAccount().PublicKey),
			fmt.Sprintf("Amount: %s", units.Format(units.ToDisplay(*transfer.Lamports))),
		)
	}
	return lines
}
