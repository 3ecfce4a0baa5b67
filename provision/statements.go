package provision

import "fmt"

// Statement is one idempotent SQL step applied after the tables exist.
type Statement struct {
	Name string
	SQL  string
}

const setUpdatedAtFunc = `
CREATE OR REPLACE FUNCTION public.set_updated_at() RETURNS trigger
LANGUAGE plpgsql AS $$
BEGIN
	NEW.updated_at = now();
	RETURN NEW;
END $$;`

const emailByUsernameFunc = `
CREATE OR REPLACE FUNCTION public.get_email_by_username(p_username text) RETURNS text
LANGUAGE sql STABLE SECURITY DEFINER SET search_path = public AS $$
	SELECT email FROM public.profiles WHERE lower(username) = lower(p_username) LIMIT 1
$$;
REVOKE ALL ON FUNCTION public.get_email_by_username(text) FROM PUBLIC;
GRANT EXECUTE ON FUNCTION public.get_email_by_username(text) TO anon, authenticated;`

// The profile row is normally written by the client at sign-up. When email
// confirmation is on there is no session to write it with, so the trigger
// creates it from the sign-up metadata.
const newUserTrigger = `
CREATE OR REPLACE FUNCTION public.handle_new_user() RETURNS trigger
LANGUAGE plpgsql SECURITY DEFINER SET search_path = public AS $$
BEGIN
	IF NEW.raw_user_meta_data ? 'username' THEN
		INSERT INTO public.profiles (id, username, email)
		VALUES (NEW.id, NEW.raw_user_meta_data->>'username', NEW.email)
		ON CONFLICT (id) DO NOTHING;
	END IF;
	RETURN NEW;
END $$;
DROP TRIGGER IF EXISTS on_auth_user_created ON auth.users;
CREATE TRIGGER on_auth_user_created AFTER INSERT ON auth.users
	FOR EACH ROW EXECUTE FUNCTION public.handle_new_user();`

func userForeignKey(table, column string) Statement {
	constraint := table + "_" + column + "_fkey"
	return Statement{
		Name: "foreign key " + constraint,
		SQL: fmt.Sprintf(`
DO $$
BEGIN
	IF NOT EXISTS (
		SELECT 1 FROM information_schema.table_constraints
		WHERE table_schema = 'public' AND table_name = '%[1]s' AND constraint_name = '%[3]s'
	) THEN
		ALTER TABLE public.%[1]s
		ADD CONSTRAINT %[3]s FOREIGN KEY (%[2]s) REFERENCES auth.users(id) ON DELETE CASCADE;
	END IF;
END $$;`, table, column, constraint),
	}
}

func updatedAtTrigger(table string) Statement {
	return Statement{
		Name: "updated_at trigger " + table,
		SQL: fmt.Sprintf(`
DROP TRIGGER IF EXISTS %[1]s_set_updated_at ON public.%[1]s;
CREATE TRIGGER %[1]s_set_updated_at BEFORE UPDATE ON public.%[1]s
	FOR EACH ROW EXECUTE FUNCTION public.set_updated_at();`, table),
	}
}

// ownerPolicy limits every operation on table to rows where column is the
// caller's auth uid.
func ownerPolicy(table, column string) Statement {
	return Statement{
		Name: "row level security " + table,
		SQL: fmt.Sprintf(`
ALTER TABLE public.%[1]s ENABLE ROW LEVEL SECURITY;
DROP POLICY IF EXISTS "%[1]s_owner" ON public.%[1]s;
CREATE POLICY "%[1]s_owner" ON public.%[1]s FOR ALL TO authenticated
	USING (%[2]s = auth.uid())
	WITH CHECK (%[2]s = auth.uid());`, table, column),
	}
}

// Statements returns the post-migration steps in the order they must run.
func Statements() []Statement {
	stmts := []Statement{
		{Name: "set_updated_at function", SQL: setUpdatedAtFunc},
		userForeignKey("profiles", "id"),
	}
	for _, table := range ownedTables {
		stmts = append(stmts, userForeignKey(table, "user_id"))
	}
	for _, table := range ownedTables {
		stmts = append(stmts, updatedAtTrigger(table))
	}
	stmts = append(stmts, ownerPolicy("profiles", "id"))
	for _, table := range ownedTables {
		stmts = append(stmts, ownerPolicy(table, "user_id"))
	}
	return append(stmts,
		Statement{Name: "get_email_by_username function", SQL: emailByUsernameFunc},
		Statement{Name: "new user trigger", SQL: newUserTrigger},
	)
}
