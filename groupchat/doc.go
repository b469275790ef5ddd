// Package groupchat orchestrates a conversation among several agents.
//
// A GroupChat owns a fixed set of members, an optional workflow.Graph that
// constrains who may speak after whom, and an optional admin agent that
// arbitrates through role-play prompting whenever more than one member is
// eligible. Run drives the round loop: pick the next speaker, ask it for a
// reply (retrying transient provider failures), append the reply and stop on
// the TERMINATE sentinel or when the round budget is used up.
//
//	chat, err := groupchat.New(
//	    []core.Agent{coder, reviewer},
//	    func(o *groupchat.Options) {
//	        o.Admin = admin
//	        o.Graph = workflow.NewGraph(
//	            workflow.NewTransition(coder, reviewer, nil),
//	            workflow.NewTransition(reviewer, coder, workflow.LastMessageNotContains("APPROVED")),
//	        )
//	    },
//	)
//	if err != nil {
//	    return err
//	}
//	history, err := chat.Run(ctx, []core.Message{task.WithFrom("coder")}, 10)
//
// In-run failures never surface as errors: they end the conversation with a
// terminal message. Run only returns an error for bad arguments or when ctx
// is cancelled.
package groupchat
