package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"google.golang.org/grpc/status"

	transportgrpc "github.com/aanand-mishra/persons-api/internal/transport/grpc"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writePersons(w io.Writer, persons []*transportgrpc.PersonMessage) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tFIRST NAME\tLAST NAME\tNATIONAL CODE\tBIRTH DATE")
	for _, p := range persons {
		if p == nil {
			continue
		}
		birth := "-"
		if p.BirthDate != nil {
			birth = p.BirthDate.UTC().Format(birthDateLayout)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.FirstName, p.LastName, p.NationalCode, birth)
	}
	return tw.Flush()
}

// FormatError renders a failed command for the terminal. gRPC status
// errors print as "<code>: <message>".
func FormatError(err error) string {
	if st, ok := status.FromError(err); ok {
		return fmt.Sprintf("%s: %s", st.Code(), st.Message())
	}
	return err.Error()
}
