package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jhytabest/plashboard/internal/api"
)

// writeResult renders a uniform result, honoring --json, and converts
// failures into a nonzero exit.
func writeResult(result api.Result) error {
	if flagJSON {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else if result.OK {
		if result.Data != nil {
			printHuman(result.Data)
		} else {
			fmt.Println("ok")
		}
	} else {
		for _, msg := range result.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", msg)
		}
	}

	if !result.OK {
		return &ExitError{
			Code:    1,
			Err:     fmt.Errorf("%s", strings.Join(result.Errors, "; ")),
			Printed: true,
		}
	}
	return nil
}

func printHuman(data any) {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		fmt.Printf("%v\n", data)
		return
	}
	fmt.Println(string(raw))
}
