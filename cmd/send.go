package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/masiarekpl/keypin/contactform"
)

func newSendCommand() *cobra.Command {
	var msg contactform.Message

	c := &cobra.Command{
		Use:               "send",
		Args:              cobra.NoArgs,
		Short:             "Encrypts stdin and submits it to the contact form backend",
		Example:           `keypin send --name Jan --email jan@example.com --subject "Hello" < message.txt`,
		PersistentPreRunE: initConfigPreRun,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return sendMessage(cmd, msg)
		},
	}

	c.Flags().StringVar(&msg.Name, "name", "", "sender name")
	c.Flags().StringVar(&msg.Email, "email", "", "reply-to address")
	c.Flags().StringVar(&msg.Subject, "subject", "", "message subject")

	return c
}

func sendMessage(cmd *cobra.Command, msg contactform.Message) error {
	body, err := readInput(cmd)
	if err != nil {
		return err
	}

	msg.Body = string(body)

	ctx := commandContext(cmd)

	r, err := newResolver(ctx)
	if err != nil {
		return err
	}

	client, err := contactform.NewClient(cfg.ContactForm, r)
	if err != nil {
		return err
	}

	receipt, err := client.Send(ctx, msg)
	if err != nil {
		return failure(err)
	}

	out := cmd.OutOrStdout()

	fmt.Fprintln(out, receipt.Message)

	if receipt.Ref != "" {
		fmt.Fprintf(out, "Ref: %s\n", receipt.Ref)
	}

	return nil
}
