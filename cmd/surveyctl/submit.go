package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/godilite/survey-form/internal/form"
	"github.com/godilite/survey-form/internal/overlay"
	"github.com/godilite/survey-form/internal/predict"
	"github.com/godilite/survey-form/internal/submit"
	"github.com/godilite/survey-form/internal/survey"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errOverlayShown marks a run whose error overlay has already been printed.
var errOverlayShown = errors.New("submission failed")

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func newSubmitCmd(v *viper.Viper) *cobra.Command {
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit one set of ratings",
		Long: `Submit sends one rating per question, 1 to 5. A question left unset counts
as unanswered and the submission is refused before anything is sent.`,
		Example: "  surveyctl submit --city-services 5 --housing-costs 4 --school-quality 3 \\\n" +
			"    --local-policies 2 --maintenance 1 --social-events 5",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubmit(cmd, v)
		},
	}

	for _, q := range survey.Questions {
		name := flagName(q.Key)
		submitCmd.Flags().Int(name, survey.Unanswered, q.Prompt)
		mustBind(v, q.Key, submitCmd.Flags().Lookup(name))
	}

	return submitCmd
}

func runSubmit(cmd *cobra.Command, v *viper.Viper) error {
	logger := newLogger(v)
	defer logger.Sync()

	client := predict.NewClient(v.GetString("url"),
		predict.WithTimeout(v.GetDuration("timeout")),
		predict.WithLogger(logger),
	)
	submitter := submit.NewFormSubmitter(client, logger)

	page := form.Selections{}
	for _, key := range survey.GroupKeys {
		page[key] = v.GetInt(key)
	}

	outcome := submitter.Submit(cmd.Context(), uuid.NewString(), page)

	out := cmd.OutOrStdout()
	for _, line := range outcome.Overlay.Lines {
		fmt.Fprintln(out, line)
	}

	if outcome.Overlay.Kind == overlay.KindError {
		return errOverlayShown
	}
	return nil
}
