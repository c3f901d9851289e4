package script

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Tool names understood by the dispatch engine. The registry below is
// advertised to the model on every chat-with-tools request; validation in
// dispatch.go decodes into the same argument structs the schemas are
// reflected from, so the two cannot drift apart.
const (
	ToolUpdateShotPrompt     = "update_shot_prompt"
	ToolUpdateShotNarration  = "update_shot_narration"
	ToolUpdateShotSubtitles  = "update_shot_subtitles"
	ToolAddShot              = "add_shot"
	ToolDeleteShot           = "delete_shot"
	ToolReorderShots         = "reorder_shots"
	ToolUpdateScriptSettings = "update_script_settings"
)

// ToolDefinition is the function-calling shape a gateway client advertises to
// the model: name, description, JSON-schema parameter object.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Required returns the schema's required-field list.
func (d ToolDefinition) Required() []string {
	raw, ok := d.Parameters["required"].([]any)
	if !ok {
		return nil
	}
	fields := make([]string, 0, len(raw))
	for _, f := range raw {
		if s, ok := f.(string); ok {
			fields = append(fields, s)
		}
	}
	return fields
}

// Argument structs double as the validation target for incoming calls.
// Every field is a pointer so that presence can be distinguished from the
// zero value; required fields are the ones tagged jsonschema:"required".

type updateShotPromptArgs struct {
	ShotID *string `json:"shotId" jsonschema:"required,description=Id of the shot to update"`
	Prompt *string `json:"prompt" jsonschema:"required,description=New generation prompt for the shot"`
}

type updateShotNarrationArgs struct {
	ShotID      *string `json:"shotId" jsonschema:"required,description=Id of the shot to update"`
	Enabled     *bool   `json:"enabled,omitempty" jsonschema:"description=Turn narration on or off"`
	Text        *string `json:"text,omitempty" jsonschema:"description=Narration text to speak over the shot"`
	AudioSource *string `json:"audioSource,omitempty" jsonschema:"enum=video,enum=elevenlabs,description=Where narration audio comes from"`
}

type updateShotSubtitlesArgs struct {
	ShotID    *string `json:"shotId" jsonschema:"required,description=Id of the shot to update"`
	Subtitles *bool   `json:"subtitles" jsonschema:"required,description=Whether subtitles are shown for the shot"`
}

type addShotArgs struct {
	Title       *string `json:"title" jsonschema:"required,description=Short title for the new shot"`
	Prompt      *string `json:"prompt" jsonschema:"required,description=Generation prompt for the new shot"`
	AfterShotID *string `json:"afterShotId,omitempty" jsonschema:"description=Insert after this shot; appended to the end when absent or unknown"`
}

type deleteShotArgs struct {
	ShotID *string `json:"shotId" jsonschema:"required,description=Id of the shot to remove"`
}

type reorderShotsArgs struct {
	ShotIDs []string `json:"shotIds" jsonschema:"required,description=Complete new ordering of existing shot ids"`
}

type updateScriptSettingsArgs struct {
	NarrationEnabled *bool   `json:"narrationEnabled,omitempty" jsonschema:"description=Default narration flag for new shots"`
	Subtitles        *bool   `json:"subtitles,omitempty" jsonschema:"description=Default subtitles flag for new shots"`
	GlobalPrompt     *string `json:"globalPrompt,omitempty" jsonschema:"description=Prefix applied to every shot prompt"`
}

// Definitions returns the full tool registry in advertisement order.
func Definitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        ToolUpdateShotPrompt,
			Description: "Replace the generation prompt of one shot.",
			Parameters:  reflectSchema[updateShotPromptArgs](),
		},
		{
			Name:        ToolUpdateShotNarration,
			Description: "Update narration settings of one shot. Only the provided fields change.",
			Parameters:  reflectSchema[updateShotNarrationArgs](),
		},
		{
			Name:        ToolUpdateShotSubtitles,
			Description: "Turn subtitles on or off for one shot.",
			Parameters:  reflectSchema[updateShotSubtitlesArgs](),
		},
		{
			Name:        ToolAddShot,
			Description: "Add a new shot. Defaults come from the script settings. Inserted after afterShotId when given, otherwise appended.",
			Parameters:  reflectSchema[addShotArgs](),
		},
		{
			Name:        ToolDeleteShot,
			Description: "Remove one shot from the script.",
			Parameters:  reflectSchema[deleteShotArgs](),
		},
		{
			Name:        ToolReorderShots,
			Description: "Reorder the script's shots. shotIds must list every existing shot id exactly once.",
			Parameters:  reflectSchema[reorderShotsArgs](),
		},
		{
			Name:        ToolUpdateScriptSettings,
			Description: "Update script-wide settings. Only the provided fields change.",
			Parameters:  reflectSchema[updateScriptSettingsArgs](),
		},
	}
}

// reflectSchema builds a JSON-schema parameter object from an argument
// struct. Pointer fields without the required tag come out optional.
func reflectSchema[T any]() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)

	b, err := schema.MarshalJSON()
	if err != nil {
		panic(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		panic(err)
	}

	// Function-calling parameter objects carry no document-level keys.
	delete(m, "$schema")
	delete(m, "$id")
	return m
}

// decodeArgs round-trips the raw argument map into the typed struct.
// A type mismatch anywhere fails the whole decode; unknown extra keys are
// ignored since the model is free to emit them.
func decodeArgs(args map[string]any, dst any) bool {
	raw, err := json.Marshal(args)
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}
