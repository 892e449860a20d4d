package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dhamidi/classinfo/classfile"
)

func newOpcodesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "opcodes [mnemonic]",
		Short: "List the JVM opcode table, or look up one mnemonic",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ops := classfile.Opcodes()
			if len(args) == 1 {
				op, ok := classfile.OpcodeByName(args[0])
				if !ok {
					return fmt.Errorf("unknown opcode %q", args[0])
				}
				ops = []classfile.Opcode{op}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "HEX\tMNEMONIC\tOPERANDS")
			for _, op := range ops {
				width := "variable"
				if n, fixed := op.OperandWidth(); fixed {
					width = fmt.Sprint(n)
				}
				fmt.Fprintf(w, "0x%02x\t%s\t%s\n", uint8(op), op, width)
			}
			return w.Flush()
		},
	}
}
