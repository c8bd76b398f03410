package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "neru",
		Short:         "Neru: a tool-calling chat assistant for Discord and the terminal",
		Long:          "neru runs an LLM persona that remembers facts about users, runs allowlisted shell commands, and answers on Discord or from the terminal.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newServeCmd(app),
		newChatCmd(app),
		newContextCmd(app),
		newLearningCmd(app),
		newMemoryCmd(app),
		newConfigCmd(app),
		newCheckCmd(),
		newSecretCmd(app),
	)

	return rootCmd
}
