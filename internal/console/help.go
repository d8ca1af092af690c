package console

import (
	"fmt"
	"sort"
	"strings"
)

const helpHeader = "Documented commands (type help <topic>):"

var helpTopics = map[string]string{
	"quit": "Quit command to exit the program.",
	"EOF":  "EOF signal to exit the program.",
	"help": "List available commands with \"help\" or detailed help with \"help cmd\".",
	"create": `Usage: create <class>
        Create a new class instance and print its id.`,
	"show": `Usage: show <class> <id> or <class>.show(<id>)
        Display the string representation of a class instance of a given id.`,
	"destroy": `Usage: destroy <class> <id> or <class>.destroy(<id>)
        Delete a class instance of a given id.`,
	"all": `Usage: all or all <class> or <class>.all()
        Display string representations of all instances of a given class.
        If no class is specified, displays all instantiated objects.`,
	"count": `Usage: count <class> or <class>.count()
        Retrieve the number of instances of a given class.`,
	"update": `Usage: update <class> <id> <attribute_name> <attribute_value> or
       <class>.update(<id>, <attribute_name>, <attribute_value>) or
       <class>.update(<id>, <dictionary>)
        Update a class instance of a given id by adding or updating
        a given attribute key/value pair or dictionary.`,
}

// help prints the command list, or the usage of a single topic.
func (c *Console) help(topic string) {
	if topic != "" {
		text, ok := helpTopics[topic]
		if !ok {
			fmt.Fprintf(c.out, "*** No help on %s\n", topic)
			return
		}
		fmt.Fprintln(c.out, text)
		return
	}

	names := make([]string, 0, len(helpTopics))
	for name := range helpTopics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, helpHeader)
	fmt.Fprintln(c.out, strings.Repeat("=", len(helpHeader)))
	fmt.Fprintln(c.out, strings.Join(names, "  "))
	fmt.Fprintln(c.out)
}
