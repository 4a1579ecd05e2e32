package commands

import (
	"fmt"

	"github.com/rigochain/rigo-gov/node"
	"github.com/rigochain/rigo-gov/types"
	"github.com/spf13/cobra"
	abcitypes "github.com/tendermint/tendermint/abci/types"
)

// QueryCmd reads the committed governance state.
var QueryCmd = &cobra.Command{
	Use:   "query <path> [id]",
	Short: "Query proposals, tallies, batches, vote types, params or info",
	Long: `Query the committed governance state.
Paths taking an id: proposal, phase, tally, batch.
Paths without an id: proposals, vote_types, params, info.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runQuery,
}

// InfoCmd is a shortcut of `query info`.
var InfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the version, the last height and the app hash",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(cmd, []string{"info"})
	},
}

func runQuery(cmd *cobra.Command, args []string) error {
	req := abcitypes.RequestQuery{Path: args[0]}
	if len(args) == 2 {
		req.Data = []byte(args[1])
	}

	resp, err := queryWith(req)
	if err != nil {
		return err
	}
	if resp.Code != abcitypes.CodeTypeOK {
		return fmt.Errorf("query failed(code:%d): %s", resp.Code, resp.Log)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(resp.Value))
	return nil
}

func queryWith(req abcitypes.RequestQuery) (abcitypes.ResponseQuery, error) {
	app, err := node.NewGovApp(rootConfig, types.SystemClock{}, logger)
	if err != nil {
		return abcitypes.ResponseQuery{}, fmt.Errorf("failed to open rigo-gov: %w", err)
	}
	defer func() {
		if err := app.Stop(); err != nil {
			logger.Error("unable to stop rigo-gov", "error", err)
		}
	}()
	return app.Query(req), nil
}
