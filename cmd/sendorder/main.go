// sendorder is a small MLLP test client: it submits one ORM^O01 lab order
// to a running labsim (or any MLLP listener) and prints the acknowledgment.
package main

import (
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/medwire-labs/labsim/internal/cliconfig"
	"github.com/medwire-labs/labsim/internal/domain"
	"github.com/medwire-labs/labsim/internal/hl7"
	"github.com/medwire-labs/labsim/internal/mllp"
)

func buildOrder(controlID, patientID, patientName, testCode string) *domain.Message {
	ts := time.Now().Format(hl7.TimestampLayout)

	msg := &domain.Message{FieldSep: '|'}
	msg.AddSegment("MSH", `^~\&`, "ORDER_SYSTEM", "HOSPITAL", hl7.DeviceApp, hl7.DeviceFacility,
		ts, "", "ORM^O01", controlID, "P", "2.5")
	msg.AddSegment("PID", "1", "", patientID, "", patientName)
	msg.AddSegment("ORC", "NW", "ORD-"+controlID)
	msg.AddSegment("OBR", "1", "ORD-"+controlID, "", testCode)
	return msg
}

func main() {
	var (
		addr        string
		controlID   string
		patientID   string
		patientName string
		testCode    string
		timeout     time.Duration
	)

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:   "sendorder",
		Short: "Send a test ORM^O01 order to an MLLP listener and print the ACK",
		RunE: func(cmd *cobra.Command, args []string) error {
			conn, err := net.DialTimeout("tcp", addr, timeout)
			if err != nil {
				return fmt.Errorf("dial %s: %w", addr, err)
			}
			defer conn.Close()
			conn.SetDeadline(time.Now().Add(timeout))

			order := buildOrder(controlID, patientID, patientName, testCode)
			if _, err := conn.Write(mllp.Encode(order.Encode())); err != nil {
				return fmt.Errorf("write order: %w", err)
			}
			log.Info().Str("addr", addr).Str("control_id", controlID).Str("test_code", testCode).Msg("order sent")

			payload, err := mllp.NewReader(conn).ReadFrame()
			if err != nil {
				return fmt.Errorf("read ack: %w", err)
			}
			for _, line := range strings.Split(string(payload), domain.SegmentSeparator) {
				fmt.Println(line)
			}

			ack, err := hl7.Parse(payload)
			if err != nil {
				return fmt.Errorf("parse ack: %w", err)
			}
			if code, _ := ack.Field("MSA", 1); code != hl7.AckCodeAccept {
				return fmt.Errorf("order not accepted: MSA-1 = %q", code)
			}
			log.Info().Msg("order accepted")
			return nil
		},
	}

	root.Flags().StringVar(&addr, "addr", "127.0.0.1:2575", "MLLP listener to send the order to")
	root.Flags().StringVar(&controlID, "control-id", fmt.Sprintf("MSG%d", time.Now().Unix()%100000), "message control ID (MSH-10)")
	root.Flags().StringVar(&patientID, "patient-id", "PAT1001", "patient identifier (PID-3)")
	root.Flags().StringVar(&patientName, "patient-name", "DOE^JOHN", "patient name (PID-5)")
	root.Flags().StringVar(&testCode, "test", "CBC", "test panel code (OBR-4.1): CBC, BMP, GLUCOSE, ...")
	root.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "dial and ack timeout")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("sendorder")
		os.Exit(1)
	}
}
